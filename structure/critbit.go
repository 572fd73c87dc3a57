package structure

import "errors"

// Critbit tree implementation over the slab arena.
// This is a binary radix tree keyed on the first bit at which two order
// keys diverge, so an in-order walk yields leaves in ascending key order
// without any rebalancing.
//
// Design goals:
// 1. Zero allocation on hot path (insert/remove/find)
// 2. Fixed memory footprint: every node lives in a pre-sized slab slot
// 3. Efficient Min/Max for best-price lookup during matching

var (
	// ErrDuplicateKey signals a sequence number collision. Order keys are
	// unique by construction, so hitting this means an upstream bug, not a
	// user-facing rejection.
	ErrDuplicateKey = errors.New("critbit: duplicate key")
)

// Leaf is the by-value view of a leaf node's payload.
type Leaf struct {
	Key      Key
	OwnerTag uint64
	Quantity uint64
	FeeTier  uint8
}

// Tree is a critbit tree whose nodes live in a Slab.
type Tree struct {
	slab   *Slab
	root   int32
	leaves int32
}

// NewTree creates an empty tree backed by slab.
func NewTree(slab *Slab) *Tree {
	return &Tree{slab: slab, root: NullIndex}
}

func (t *Tree) allocLeaf(leaf Leaf) (int32, error) {
	h, err := t.slab.Allocate()
	if err != nil {
		return NullIndex, err
	}
	n := t.slab.Node(h)
	n.Tag = TagLeaf
	n.Key = leaf.Key
	n.OwnerTag = leaf.OwnerTag
	n.Quantity = leaf.Quantity
	n.FeeTier = leaf.FeeTier
	return h, nil
}

// Insert adds a new leaf and returns its handle. An insert needs at most
// two free slab slots (the leaf and one inner node); when the second
// allocation fails the first is rolled back, so a failed insert leaves the
// tree and the slab untouched.
func (t *Tree) Insert(leaf Leaf) (int32, error) {
	if t.root == NullIndex {
		h, err := t.allocLeaf(leaf)
		if err != nil {
			return NullIndex, err
		}
		t.root = h
		t.leaves++
		return h, nil
	}

	parent := NullIndex
	pDir := 0
	current := t.root
	for {
		n := t.slab.Node(current)
		if n.Key == leaf.Key {
			if n.Tag == TagLeaf {
				return NullIndex, ErrDuplicateKey
			}
			// Equal keys share every prefix; keep walking.
			parent, pDir = current, leaf.Key.bit(n.PrefixLen)
			current = n.Children[pDir]
			continue
		}
		cb := critBit(n.Key, leaf.Key)
		if n.Tag == TagInner && cb >= n.PrefixLen {
			// The new key still shares this node's prefix (diverging exactly
			// at the critical bit just picks the other child), so it belongs
			// inside this subtree.
			parent, pDir = current, leaf.Key.bit(n.PrefixLen)
			current = n.Children[pDir]
			continue
		}

		// The new key diverges at cb, above the current subtree: split the
		// edge with a fresh inner node.
		leafH, err := t.allocLeaf(leaf)
		if err != nil {
			return NullIndex, err
		}
		innerH, err := t.slab.Allocate()
		if err != nil {
			t.slab.Free(leafH)
			return NullIndex, err
		}
		inner := t.slab.Node(innerH)
		inner.Tag = TagInner
		inner.PrefixLen = cb
		inner.Key = leaf.Key
		dir := leaf.Key.bit(cb)
		inner.Children[dir] = leafH
		inner.Children[1-dir] = current
		if parent == NullIndex {
			t.root = innerH
		} else {
			t.slab.Node(parent).Children[pDir] = innerH
		}
		t.leaves++
		return leafH, nil
	}
}

// Find returns the handle of the leaf holding key.
func (t *Tree) Find(key Key) (int32, bool) {
	current := t.root
	for current != NullIndex {
		n := t.slab.Node(current)
		if n.Tag == TagLeaf {
			if n.Key == key {
				return current, true
			}
			return NullIndex, false
		}
		if key != n.Key && critBit(n.Key, key) < n.PrefixLen {
			return NullIndex, false
		}
		current = n.Children[key.bit(n.PrefixLen)]
	}
	return NullIndex, false
}

// Remove deletes the leaf holding key and returns its payload. The leaf's
// parent inner node collapses by promoting the sibling subtree; both slots
// go back to the slab.
func (t *Tree) Remove(key Key) (Leaf, bool) {
	grandparent := NullIndex
	gpDir := 0
	parent := NullIndex
	pDir := 0
	current := t.root
	for current != NullIndex {
		n := t.slab.Node(current)
		if n.Tag == TagLeaf {
			if n.Key != key {
				return Leaf{}, false
			}
			out := Leaf{Key: n.Key, OwnerTag: n.OwnerTag, Quantity: n.Quantity, FeeTier: n.FeeTier}
			if parent == NullIndex {
				t.root = NullIndex
			} else {
				sibling := t.slab.Node(parent).Children[1-pDir]
				if grandparent == NullIndex {
					t.root = sibling
				} else {
					t.slab.Node(grandparent).Children[gpDir] = sibling
				}
				t.slab.Free(parent)
			}
			t.slab.Free(current)
			t.leaves--
			return out, true
		}
		if key != n.Key && critBit(n.Key, key) < n.PrefixLen {
			return Leaf{}, false
		}
		grandparent, gpDir = parent, pDir
		parent, pDir = current, key.bit(n.PrefixLen)
		current = n.Children[pDir]
	}
	return Leaf{}, false
}

// Min returns the handle of the leaf with the smallest key.
func (t *Tree) Min() (int32, bool) {
	return t.extreme(0)
}

// Max returns the handle of the leaf with the largest key.
func (t *Tree) Max() (int32, bool) {
	return t.extreme(1)
}

func (t *Tree) extreme(dir int) (int32, bool) {
	current := t.root
	if current == NullIndex {
		return NullIndex, false
	}
	for {
		n := t.slab.Node(current)
		if n.Tag == TagLeaf {
			return current, true
		}
		current = n.Children[dir]
	}
}

// Node exposes the slab slot behind a handle for in-place mutation during
// matching.
func (t *Tree) Node(h int32) *Node {
	return t.slab.Node(h)
}

// Len returns the number of leaves.
func (t *Tree) Len() int32 {
	return t.leaves
}

// Iterator walks leaves in ascending key order.
// Usage:
//
//	it := tree.Iter()
//	for h, ok := it.Next(); ok; h, ok = it.Next() {
//	    leaf := tree.Node(h)
//	    // ...
//	}
//
// The iterator is restartable per call but must not straddle tree
// mutations.
type Iterator struct {
	tree  *Tree
	stack []int32
}

// Iter returns an iterator positioned before the minimum leaf.
func (t *Tree) Iter() *Iterator {
	it := &Iterator{tree: t}
	if t.root != NullIndex {
		it.stack = append(it.stack, t.root)
	}
	return it
}

// Next advances to the next leaf and returns its handle.
func (it *Iterator) Next() (int32, bool) {
	for len(it.stack) > 0 {
		h := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		n := it.tree.slab.Node(h)
		if n.Tag == TagLeaf {
			return h, true
		}
		it.stack = append(it.stack, n.Children[1], n.Children[0])
	}
	return NullIndex, false
}
