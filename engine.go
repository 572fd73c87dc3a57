package aob

import (
	"sync"

	"github.com/rs/xid"
)

// MatchingEngine hosts many independent markets and routes calls to them by
// id. The registry itself is safe for concurrent use; each market is still
// single-writer, so callers submitting to the same market serialize, usually
// by pinning a market to one goroutine.
type MatchingEngine struct {
	markets sync.Map // market id -> *Market
}

// NewMatchingEngine creates an engine with no markets.
func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{}
}

// CreateMarket registers a new market. An empty id gets a generated one.
// The returned market is empty and ready for orders.
func (e *MatchingEngine) CreateMarket(id string, params MarketParams) (*Market, error) {
	if id == "" {
		id = xid.New().String()
	}
	m, err := NewMarket(id, params)
	if err != nil {
		return nil, err
	}
	if _, loaded := e.markets.LoadOrStore(id, m); loaded {
		return nil, ErrMarketExists
	}
	logger.Info("market created",
		"market_id", id,
		"authority", params.Authority,
		"tick_size", params.TickSize.String(),
		"qty_increment", params.QtyIncrement.String())
	return m, nil
}

// Market looks up a market by id.
func (e *MatchingEngine) Market(id string) (*Market, error) {
	v, ok := e.markets.Load(id)
	if !ok {
		return nil, ErrMarketNotFound
	}
	return v.(*Market), nil
}

// CloseMarket removes a market from the registry. In-flight references stay
// valid; the market just stops being routable.
func (e *MatchingEngine) CloseMarket(id string) error {
	if _, ok := e.markets.Load(id); !ok {
		return ErrMarketNotFound
	}
	e.markets.Delete(id)
	logger.Info("market closed", "market_id", id)
	return nil
}

// NewOrder routes an order to the named market.
func (e *MatchingEngine) NewOrder(marketID string, p NewOrderParams) (OrderSummary, error) {
	m, err := e.Market(marketID)
	if err != nil {
		return OrderSummary{}, err
	}
	return m.NewOrder(p)
}

// CancelOrder routes a cancel to the named market.
func (e *MatchingEngine) CancelOrder(marketID string, id OrderID) (OrderSummary, error) {
	m, err := e.Market(marketID)
	if err != nil {
		return OrderSummary{}, err
	}
	return m.CancelOrder(id)
}

// Range calls fn for every registered market until fn returns false.
func (e *MatchingEngine) Range(fn func(m *Market) bool) {
	e.markets.Range(func(_, v any) bool {
		return fn(v.(*Market))
	})
}
