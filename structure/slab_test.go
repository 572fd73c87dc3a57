package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabAllocateUntilFull(t *testing.T) {
	s := NewSlab(3)
	assert.Equal(t, int32(3), s.Capacity())
	assert.Equal(t, int32(0), s.InUse())

	seen := make(map[int32]bool)
	for i := 0; i < 3; i++ {
		h, err := s.Allocate()
		require.NoError(t, err)
		assert.False(t, seen[h])
		seen[h] = true
	}
	assert.Equal(t, int32(3), s.InUse())

	_, err := s.Allocate()
	assert.ErrorIs(t, err, ErrSlabOutOfSpace)
	assert.Equal(t, int32(3), s.InUse())
}

func TestSlabFreeAndReuse(t *testing.T) {
	s := NewSlab(2)
	h1, err := s.Allocate()
	require.NoError(t, err)
	_, err = s.Allocate()
	require.NoError(t, err)

	n := s.Node(h1)
	n.Tag = TagLeaf
	n.Key = Key{Price: 42, Seq: 7}
	n.Quantity = 99

	s.Free(h1)
	assert.Equal(t, int32(1), s.InUse())

	h3, err := s.Allocate()
	require.NoError(t, err)
	assert.Equal(t, h1, h3)

	// Reused slots come back zeroed with null children.
	n = s.Node(h3)
	assert.Equal(t, TagUninitialized, n.Tag)
	assert.Equal(t, Key{}, n.Key)
	assert.Equal(t, uint64(0), n.Quantity)
	assert.Equal(t, NullIndex, n.Children[0])
	assert.Equal(t, NullIndex, n.Children[1])
}

func TestKeyBitAndCritBit(t *testing.T) {
	a := Key{Price: 1, Seq: 0}
	b := Key{Price: 0, Seq: 1}

	assert.Equal(t, 1, a.bit(63))
	assert.Equal(t, 0, a.bit(127))
	assert.Equal(t, 0, b.bit(63))
	assert.Equal(t, 1, b.bit(127))

	assert.Equal(t, uint8(63), critBit(a, Key{Price: 0, Seq: 0}))
	assert.Equal(t, uint8(127), critBit(b, Key{Price: 0, Seq: 0}))
	// Price differences dominate seq differences.
	assert.Equal(t, uint8(63), critBit(a, b))
}

func TestKeyLess(t *testing.T) {
	assert.True(t, Key{Price: 1, Seq: 9}.Less(Key{Price: 2, Seq: 0}))
	assert.True(t, Key{Price: 1, Seq: 1}.Less(Key{Price: 1, Seq: 2}))
	assert.False(t, Key{Price: 1, Seq: 2}.Less(Key{Price: 1, Seq: 2}))
}
