package aob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenodex/aob/structure"
)

func testFill(seq uint64) Event {
	maker := structure.Leaf{
		Key:      structure.Key{Price: 100, Seq: seq},
		OwnerTag: 1,
		Quantity: 10,
	}
	return newFillEvent(Bid, maker, 2, 0, 5, 500)
}

func TestEventQueueFIFO(t *testing.T) {
	q := NewEventQueue(4)
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 4, q.Cap())

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, q.Push(testFill(i)))
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, uint64(3), q.SeqNum())

	for i := uint64(1); i <= 3; i++ {
		ev, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, i, ev.OrderKey.Seq)
	}
	_, ok := q.PopFront()
	assert.False(t, ok)
}

func TestEventQueueFullRejects(t *testing.T) {
	q := NewEventQueue(2)
	require.NoError(t, q.Push(testFill(1)))
	require.NoError(t, q.Push(testFill(2)))
	assert.True(t, q.IsFull())

	err := q.Push(testFill(3))
	assert.ErrorIs(t, err, ErrEventQueueFull)
	// A rejected push does not advance the sequence number.
	assert.Equal(t, uint64(2), q.SeqNum())
	assert.Equal(t, 2, q.Len())

	ev, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.OrderKey.Seq)

	require.NoError(t, q.Push(testFill(3)))
	assert.Equal(t, uint64(3), q.SeqNum())
}

func TestEventQueueWrapAround(t *testing.T) {
	q := NewEventQueue(3)
	next := uint64(1)
	pushed, popped := uint64(0), uint64(0)

	// Keep the queue saturated across several laps of the buffer.
	for lap := 0; lap < 5; lap++ {
		for !q.IsFull() {
			require.NoError(t, q.Push(testFill(next)))
			next++
			pushed++
		}
		for i := 0; i < 2; i++ {
			ev, ok := q.PopFront()
			require.True(t, ok)
			popped++
			assert.Equal(t, popped, ev.OrderKey.Seq)
		}
	}
	assert.Equal(t, pushed, q.SeqNum())
	assert.Equal(t, int(pushed-popped), q.Len())
}

func TestEventQueuePeekAndPopN(t *testing.T) {
	q := NewEventQueue(8)
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, q.Push(testFill(i)))
	}

	ev, ok := q.Peek(0)
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.OrderKey.Seq)
	ev, ok = q.Peek(4)
	require.True(t, ok)
	assert.Equal(t, uint64(5), ev.OrderKey.Seq)
	_, ok = q.Peek(5)
	assert.False(t, ok)

	assert.Equal(t, 3, q.PopN(3))
	assert.Equal(t, 2, q.Len())
	// PopN past the end drains what is there.
	assert.Equal(t, 2, q.PopN(10))
	assert.True(t, q.IsEmpty())
}

func TestEventQueueRegister(t *testing.T) {
	q := NewEventQueue(2)
	_, ok := q.Register()
	assert.False(t, ok)

	q.writeRegister(OrderSummary{TotalBaseQtyMatched: 7})
	s, ok := q.Register()
	require.True(t, ok)
	assert.Equal(t, uint64(7), s.TotalBaseQtyMatched)

	// Each call overwrites the slot.
	q.writeRegister(OrderSummary{TotalBaseQtyPosted: 3})
	s, ok = q.Register()
	require.True(t, ok)
	assert.Equal(t, uint64(0), s.TotalBaseQtyMatched)
	assert.Equal(t, uint64(3), s.TotalBaseQtyPosted)

	q.ClearRegister()
	_, ok = q.Register()
	assert.False(t, ok)
}
