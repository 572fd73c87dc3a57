package aob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedOrder runs one order through a market and folds its events and post
// into the view, the way a market data publisher does.
func feedOrder(t *testing.T, m *Market, b *AggregatedBook, p NewOrderParams) OrderSummary {
	t.Helper()
	s, err := m.NewOrder(p)
	require.NoError(t, err)
	for {
		ev, ok := m.Events().PopFront()
		if !ok {
			break
		}
		b.ApplyEvent(ev)
	}
	b.ApplySummary(s)
	return s
}

func TestAggregatedBookLevels(t *testing.T) {
	m := newTestMarket(t)
	b := NewAggregatedBook(m)

	feedOrder(t, m, b, limitOrder(Bid, 100, 3, 1))
	feedOrder(t, m, b, limitOrder(Bid, 100, 2, 2))
	feedOrder(t, m, b, limitOrder(Bid, 99, 4, 3))
	feedOrder(t, m, b, limitOrder(Ask, 101, 5, 4))

	bids := b.Depth(Bid, 0)
	require.Len(t, bids, 2)
	// Best level first, same-price orders aggregated.
	assert.True(t, bids[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, bids[1].Price.Equal(decimal.NewFromInt(99)))

	asks := b.Depth(Ask, 0)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Price.Equal(decimal.NewFromInt(101)))
}

func TestAggregatedBookFollowsFills(t *testing.T) {
	m := newTestMarket(t)
	b := NewAggregatedBook(m)

	feedOrder(t, m, b, limitOrder(Ask, 100, 6, 1))
	feedOrder(t, m, b, limitOrder(Bid, 100, 4, 2))

	asks := b.Depth(Ask, 0)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, 0, b.Levels(Bid))

	// Finishing off the level removes it from the view.
	feedOrder(t, m, b, limitOrder(Bid, 100, 2, 2))
	assert.Equal(t, 0, b.Levels(Ask))
}

func TestAggregatedBookFollowsCancels(t *testing.T) {
	m := newTestMarket(t)
	b := NewAggregatedBook(m)

	s := feedOrder(t, m, b, limitOrder(Bid, 100, 3, 1))
	feedOrder(t, m, b, limitOrder(Bid, 100, 2, 2))

	_, err := m.CancelOrder(*s.PostedOrderID)
	require.NoError(t, err)
	ev, ok := m.Events().PopFront()
	require.True(t, ok)
	b.ApplyEvent(ev)

	bids := b.Depth(Bid, 0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestAggregatedBookDepthLimitAndOrdering(t *testing.T) {
	m := newTestMarket(t)
	b := NewAggregatedBook(m)

	for i, price := range []int64{105, 101, 103, 102, 104} {
		feedOrder(t, m, b, limitOrder(Ask, price, 1, uint64(i+1)))
	}

	asks := b.Depth(Ask, 3)
	require.Len(t, asks, 3)
	assert.True(t, asks[0].Price.Equal(decimal.NewFromInt(101)))
	assert.True(t, asks[1].Price.Equal(decimal.NewFromInt(102)))
	assert.True(t, asks[2].Price.Equal(decimal.NewFromInt(103)))
}

func TestAggregatedBookSeedsFromBook(t *testing.T) {
	m := newTestMarket(t)
	_, err := m.NewOrder(limitOrder(Bid, 100, 3, 1))
	require.NoError(t, err)
	_, err = m.NewOrder(limitOrder(Ask, 110, 2, 2))
	require.NoError(t, err)

	// A view created against a non-empty market picks up the resting state.
	b := NewAggregatedBook(m)
	assert.Equal(t, 1, b.Levels(Bid))
	assert.Equal(t, 1, b.Levels(Ask))

	b.Rebuild()
	assert.Equal(t, 1, b.Levels(Bid))
	bids := b.Depth(Bid, 0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Quantity.Equal(decimal.NewFromInt(3)))
}

func TestDecimalUnitsRoundTrip(t *testing.T) {
	m := newTestMarket(t, func(p *MarketParams) {
		p.TickSize = decimal.RequireFromString("0.25")
		p.QtyIncrement = decimal.RequireFromString("0.1")
	})

	s, err := m.NewOrder(NewOrderParams{
		Side:       Bid,
		LimitPrice: decimal.RequireFromString("10.75"),
		MaxBaseQty: decimal.RequireFromString("2.5"),
		OwnerTag:   1,
	})
	require.NoError(t, err)
	require.NotNil(t, s.PostedOrderID)
	assert.Equal(t, uint64(43), s.PostedOrderID.PriceTicks())
	assert.Equal(t, uint64(25), s.TotalBaseQtyPosted)

	assert.True(t, m.PriceFromTicks(43).Equal(decimal.RequireFromString("10.75")))
	assert.True(t, m.BaseFromLots(25).Equal(decimal.RequireFromString("2.5")))
	assert.True(t, m.QuoteFromUnits(43*25).Equal(decimal.RequireFromString("26.875")))
}
