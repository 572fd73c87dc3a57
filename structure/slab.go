package structure

import (
	"errors"
	"math/bits"
)

// Slab is a fixed-capacity arena of critbit tree nodes with an intrusive
// free list. All nodes for one side of the book live in slab slots addressed
// by index; nothing is heap-allocated after construction and the arena never
// grows. Exhaustion is a normal condition (the book is full) reported as
// ErrSlabOutOfSpace.
//
// The free list is threaded through Children[0] of uninitialized nodes,
// the same trick the pooled skiplist arena uses with Forward[0].

const (
	// NullIndex marks an absent node reference.
	NullIndex int32 = -1
)

var (
	ErrSlabOutOfSpace = errors.New("slab: out of space")
)

// NodeTag discriminates the variants stored in a slab slot.
type NodeTag uint8

const (
	// TagUninitialized nodes sit on the free list.
	TagUninitialized NodeTag = iota
	// TagInner nodes route on a critical bit.
	TagInner
	// TagLeaf nodes carry one resting order.
	TagLeaf
)

// Key is the 128-bit composite sort key of a resting order: the
// side-encoded price ticks in the high word and the per-market sequence
// number in the low word. Bid prices are stored bit-complemented so that
// both sides yield best-price-first under an ascending walk, with ties
// broken by the earlier sequence number.
type Key struct {
	Price uint64
	Seq   uint64
}

// Less reports whether k sorts before o (lexicographic on Price, Seq).
func (k Key) Less(o Key) bool {
	if k.Price != o.Price {
		return k.Price < o.Price
	}
	return k.Seq < o.Seq
}

// bit returns the i-th bit of the key counting from the most significant
// (bit 0) to the least significant (bit 127).
func (k Key) bit(i uint8) int {
	if i < 64 {
		return int(k.Price>>(63-i)) & 1
	}
	return int(k.Seq>>(127-i)) & 1
}

// critBit returns the index of the first bit at which a and b differ.
// Both keys must be distinct.
func critBit(a, b Key) uint8 {
	if a.Price != b.Price {
		return uint8(bits.LeadingZeros64(a.Price ^ b.Price))
	}
	return uint8(64 + bits.LeadingZeros64(a.Seq^b.Seq))
}

// Node is one fixed-size slab slot.
//
// Inner nodes use Key as a representative key of their subtree, PrefixLen
// as the critical bit index and Children as the two subtrees (bit 0 left,
// bit 1 right). Leaf nodes use Key, Quantity, OwnerTag and FeeTier.
// Uninitialized nodes reuse Children[0] as the free-list link.
type Node struct {
	Tag       NodeTag
	PrefixLen uint8
	FeeTier   uint8
	Key       Key
	Children  [2]int32
	Quantity  uint64
	OwnerTag  uint64
}

// Slab is the arena itself.
type Slab struct {
	nodes    []Node
	freeHead int32
	inUse    int32
}

// NewSlab creates a slab with room for capacity nodes, all free.
func NewSlab(capacity int32) *Slab {
	s := &Slab{
		nodes:    make([]Node, capacity),
		freeHead: 0,
	}
	for i := int32(0); i < capacity-1; i++ {
		s.nodes[i].Children[0] = i + 1
	}
	s.nodes[capacity-1].Children[0] = NullIndex
	return s
}

// Allocate pops a slot off the free list. The returned node is zeroed and
// still tagged TagUninitialized; the caller commits it by setting the tag.
func (s *Slab) Allocate() (int32, error) {
	if s.freeHead == NullIndex {
		return NullIndex, ErrSlabOutOfSpace
	}
	idx := s.freeHead
	s.freeHead = s.nodes[idx].Children[0]
	s.nodes[idx] = Node{Children: [2]int32{NullIndex, NullIndex}}
	s.inUse++
	return idx, nil
}

// Free pushes a slot back onto the free list.
func (s *Slab) Free(idx int32) {
	s.nodes[idx] = Node{Tag: TagUninitialized}
	s.nodes[idx].Children[0] = s.freeHead
	s.freeHead = idx
	s.inUse--
}

// Node returns the slot at idx for reading or in-place mutation.
func (s *Slab) Node(idx int32) *Node {
	return &s.nodes[idx]
}

// Capacity returns the fixed number of slots.
func (s *Slab) Capacity() int32 {
	return int32(len(s.nodes))
}

// InUse returns the number of committed slots.
func (s *Slab) InUse() int32 {
	return s.inUse
}
