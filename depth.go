package aob

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
)

// PriceLevel is one row of the aggregated depth view.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// AggregatedBook maintains a per-price-level view of a market, the shape
// market data feeds publish. It is driven by the market's event stream plus
// the post notifications carried in order summaries, since posting a
// remainder emits no event.
//
// Levels are keyed by decimal price; bids sort descending and asks
// ascending, so the front of either list is the best level.
type AggregatedBook struct {
	market *Market
	bids   *skiplist.SkipList
	asks   *skiplist.SkipList
}

func descendingDecimal(k1, k2 interface{}) int {
	d1 := k1.(decimal.Decimal)
	d2 := k2.(decimal.Decimal)
	return d2.Cmp(d1)
}

func ascendingDecimal(k1, k2 interface{}) int {
	d1 := k1.(decimal.Decimal)
	d2 := k2.(decimal.Decimal)
	return d1.Cmp(d2)
}

// NewAggregatedBook creates an empty view bound to a market and seeds it
// from the orders currently resting in the book.
func NewAggregatedBook(m *Market) *AggregatedBook {
	b := &AggregatedBook{
		market: m,
		bids:   skiplist.New(skiplist.GreaterThanFunc(descendingDecimal)),
		asks:   skiplist.New(skiplist.GreaterThanFunc(ascendingDecimal)),
	}
	b.Rebuild()
	return b
}

func (b *AggregatedBook) list(side Side) *skiplist.SkipList {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// Rebuild discards the view and rescans the book. Consumers that lost
// events resynchronize with it.
func (b *AggregatedBook) Rebuild() {
	b.bids.Init()
	b.asks.Init()
	for _, side := range []Side{Bid, Ask} {
		for _, o := range b.market.Book().Orders(side) {
			b.add(side, o.PriceTicks, o.Quantity)
		}
	}
}

func (b *AggregatedBook) add(side Side, priceTicks, lots uint64) {
	list := b.list(side)
	price := b.market.PriceFromTicks(priceTicks)
	qty := b.market.BaseFromLots(lots)
	if el := list.Get(price); el != nil {
		qty = qty.Add(el.Value.(decimal.Decimal))
	}
	list.Set(price, qty)
}

func (b *AggregatedBook) sub(side Side, priceTicks, lots uint64) {
	list := b.list(side)
	price := b.market.PriceFromTicks(priceTicks)
	el := list.Get(price)
	if el == nil {
		return
	}
	qty := el.Value.(decimal.Decimal).Sub(b.market.BaseFromLots(lots))
	if qty.Sign() <= 0 {
		list.Remove(price)
		return
	}
	list.Set(price, qty)
}

// ApplyEvent folds one queue event into the view. Fills reduce the maker's
// level; Out events release whatever quantity they report.
func (b *AggregatedBook) ApplyEvent(ev Event) {
	switch ev.Tag {
	case EventTagFill:
		maker := ev.Side.Opposite()
		b.sub(maker, decodePrice(maker, ev.OrderKey.Price), ev.BaseQty)
	case EventTagOut:
		b.sub(ev.Side, decodePrice(ev.Side, ev.OrderKey.Price), ev.BaseQty)
	}
}

// ApplySummary folds the posted remainder of an order summary into the
// view. Call it with every NewOrder result.
func (b *AggregatedBook) ApplySummary(s OrderSummary) {
	if s.PostedOrderID == nil {
		return
	}
	id := *s.PostedOrderID
	b.add(id.Side, id.PriceTicks(), s.TotalBaseQtyPosted)
}

// Depth returns up to limit levels on one side, best first. A non-positive
// limit returns all levels.
func (b *AggregatedBook) Depth(side Side, limit int) []PriceLevel {
	list := b.list(side)
	n := list.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]PriceLevel, 0, n)
	for el := list.Front(); el != nil && len(out) < n; el = el.Next() {
		out = append(out, PriceLevel{
			Price:    el.Key().(decimal.Decimal),
			Quantity: el.Value.(decimal.Decimal),
		})
	}
	return out
}

// Levels returns how many distinct price levels one side holds.
func (b *AggregatedBook) Levels(side Side) int {
	return b.list(side).Len()
}
