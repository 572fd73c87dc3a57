package aob

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newBenchMarket(b *testing.B) *Market {
	b.Helper()
	m, err := NewMarket("bench", MarketParams{
		Authority:     "bench",
		BidsCapacity:  1 << 16,
		AsksCapacity:  1 << 16,
		EventCapacity: 1 << 12,
		TickSize:      decimal.NewFromInt(1),
		QtyIncrement:  decimal.NewFromInt(1),
	})
	if err != nil {
		b.Fatal(err)
	}
	return m
}

func BenchmarkNewOrderMatch(b *testing.B) {
	m := newBenchMarket(b)
	ask := limitOrder(Ask, 100, 1, 1)
	bid := limitOrder(Bid, 100, 1, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.NewOrder(ask); err != nil {
			b.Fatal(err)
		}
		if _, err := m.NewOrder(bid); err != nil {
			b.Fatal(err)
		}
		m.Events().PopN(1)
	}
}

func BenchmarkNewOrderPostCancel(b *testing.B) {
	m := newBenchMarket(b)
	bid := limitOrder(Bid, 100, 1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := m.NewOrder(bid)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := m.CancelOrder(*s.PostedOrderID); err != nil {
			b.Fatal(err)
		}
		m.Events().PopN(1)
	}
}

func BenchmarkBestLookup(b *testing.B) {
	m := newBenchMarket(b)
	for price := int64(1); price <= 1024; price++ {
		if _, err := m.NewOrder(limitOrder(Bid, price, 1, 1)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := m.Book().Best(Bid); !ok {
			b.Fatal("empty book")
		}
	}
}
