package aob

import (
	"errors"

	"github.com/zenodex/aob/structure"
)

// OrderBook owns the two critbit trees and their slabs. Priority is fully
// encoded in the keys: thanks to the side-dependent price encoding, the
// minimum key of either tree is that side's best order, and an ascending
// walk yields orders in matching priority.
type OrderBook struct {
	bidSlab *structure.Slab
	askSlab *structure.Slab
	bids    *structure.Tree
	asks    *structure.Tree
}

// newOrderBook pre-allocates both slabs. A book holding n resting orders
// uses n leaves plus n-1 inner nodes, so each side's slab is sized at twice
// its configured order capacity.
func newOrderBook(bidsCapacity, asksCapacity int32) *OrderBook {
	bidSlab := structure.NewSlab(2 * bidsCapacity)
	askSlab := structure.NewSlab(2 * asksCapacity)
	return &OrderBook{
		bidSlab: bidSlab,
		askSlab: askSlab,
		bids:    structure.NewTree(bidSlab),
		asks:    structure.NewTree(askSlab),
	}
}

func (b *OrderBook) tree(side Side) *structure.Tree {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) slab(side Side) *structure.Slab {
	if side == Bid {
		return b.bidSlab
	}
	return b.askSlab
}

// InsertOrder writes a resting order into the given side's tree.
func (b *OrderBook) InsertOrder(side Side, leaf structure.Leaf) (int32, error) {
	h, err := b.tree(side).Insert(leaf)
	if err != nil {
		if errors.Is(err, structure.ErrSlabOutOfSpace) {
			return structure.NullIndex, ErrOutOfSpace
		}
		return structure.NullIndex, err
	}
	return h, nil
}

// RemoveOrder deletes a resting order by key and returns its payload.
func (b *OrderBook) RemoveOrder(side Side, key structure.Key) (structure.Leaf, bool) {
	return b.tree(side).Remove(key)
}

// FindOrder returns the node holding key, without removing it.
func (b *OrderBook) FindOrder(side Side, key structure.Key) (*structure.Node, bool) {
	h, ok := b.tree(side).Find(key)
	if !ok {
		return nil, false
	}
	return b.tree(side).Node(h), true
}

// Best returns the handle of the side's best resting order (highest bid,
// lowest ask).
func (b *OrderBook) Best(side Side) (int32, bool) {
	return b.tree(side).Min()
}

// BestOrder returns the read-only view of the side's best resting order.
func (b *OrderBook) BestOrder(side Side) (RestingOrder, bool) {
	h, ok := b.Best(side)
	if !ok {
		return RestingOrder{}, false
	}
	return b.restingOrder(side, b.tree(side).Node(h)), true
}

// OrderCount returns the number of resting orders on one side.
func (b *OrderBook) OrderCount(side Side) int32 {
	return b.tree(side).Len()
}

func (b *OrderBook) restingOrder(side Side, n *structure.Node) RestingOrder {
	return RestingOrder{
		OrderID:    OrderID{Key: n.Key, Side: side, OwnerTag: n.OwnerTag},
		PriceTicks: decodePrice(side, n.Key.Price),
		Quantity:   n.Quantity,
		FeeTier:    n.FeeTier,
	}
}

// Orders returns all resting orders on one side in matching priority order.
func (b *OrderBook) Orders(side Side) []RestingOrder {
	tree := b.tree(side)
	out := make([]RestingOrder, 0, tree.Len())
	it := tree.Iter()
	for h, ok := it.Next(); ok; h, ok = it.Next() {
		out = append(out, b.restingOrder(side, tree.Node(h)))
	}
	return out
}

// crosses reports whether an incoming order with the given limit matches a
// resting price on the opposite side.
func crosses(incoming Side, limitTicks, restingTicks uint64) bool {
	if incoming == Bid {
		return limitTicks >= restingTicks
	}
	return limitTicks <= restingTicks
}

// MatchableIterator lazily walks the resting orders on one side that an
// incoming order with the given limit price would match, best price first.
// It stops as soon as the price no longer crosses. It must not straddle
// book mutations; matching itself re-reads the best order after every fill
// instead of holding an iterator.
type MatchableIterator struct {
	book       *OrderBook
	side       Side
	limitTicks uint64
	it         *structure.Iterator
	done       bool
}

// IterMatchable returns an iterator over the resting orders on side whose
// price satisfies an incoming order (on the opposite side) limited at
// limitTicks.
func (b *OrderBook) IterMatchable(side Side, limitTicks uint64) *MatchableIterator {
	return &MatchableIterator{
		book:       b,
		side:       side,
		limitTicks: limitTicks,
		it:         b.tree(side).Iter(),
	}
}

// Next returns the next crossing resting order.
func (it *MatchableIterator) Next() (RestingOrder, bool) {
	if it.done {
		return RestingOrder{}, false
	}
	h, ok := it.it.Next()
	if !ok {
		it.done = true
		return RestingOrder{}, false
	}
	n := it.book.tree(it.side).Node(h)
	price := decodePrice(it.side, n.Key.Price)
	if !crosses(it.side.Opposite(), it.limitTicks, price) {
		it.done = true
		return RestingOrder{}, false
	}
	return it.book.restingOrder(it.side, n), true
}
