package aob

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/zenodex/aob/structure"
)

// DefaultMatchLimit bounds the number of resting orders examined by a
// single NewOrder call when the caller does not set one.
const DefaultMatchLimit = 65536

// DefaultEventCapacity is the event queue size used when MarketParams
// leaves EventCapacity at zero.
const DefaultEventCapacity = 4096

// MarketParams is the immutable configuration of a market.
type MarketParams struct {
	// Authority identifies the operator allowed to administer the market.
	// The core records it; verifying it is up to the embedding runtime.
	Authority string

	// BidsCapacity and AsksCapacity bound how many orders may rest on each
	// side of the book.
	BidsCapacity int32
	AsksCapacity int32

	// EventCapacity is the size of the bounded event queue.
	EventCapacity int

	// TickSize is the price grid step. Limit prices must be positive
	// multiples of it unless RoundPrices is set.
	TickSize decimal.Decimal

	// QtyIncrement is the base quantity grid step (one lot). All base
	// quantities must be positive multiples of it.
	QtyIncrement decimal.Decimal

	// MinBaseOrderSize is the smallest quantity, in lots, an order may rest
	// at. Partial fills that leave a maker below it evict the remainder.
	MinBaseOrderSize uint64

	// FeeTierSeed is an opaque reference to the fee schedule applied by the
	// settlement layer. The core only carries it.
	FeeTierSeed uint8

	// PostOnlyMode selects how a crossing post-only order is handled.
	PostOnlyMode PostOnlyMode

	// RoundPrices quantizes off-grid limit prices toward the less
	// aggressive tick (bids down, asks up) instead of rejecting them.
	RoundPrices bool
}

func (p *MarketParams) withDefaults() MarketParams {
	out := *p
	if out.EventCapacity == 0 {
		out.EventCapacity = DefaultEventCapacity
	}
	if out.MinBaseOrderSize == 0 {
		out.MinBaseOrderSize = 1
	}
	return out
}

func (p *MarketParams) validate() error {
	if p.BidsCapacity <= 0 || p.AsksCapacity <= 0 {
		return ErrInvalidParam
	}
	if p.EventCapacity < 0 {
		return ErrInvalidParam
	}
	if p.TickSize.Sign() <= 0 || p.QtyIncrement.Sign() <= 0 {
		return ErrInvalidParam
	}
	switch p.PostOnlyMode {
	case PostOnlyReject, PostOnlyCancel:
	default:
		return ErrInvalidParam
	}
	return nil
}

// NewOrderParams describes one incoming order.
type NewOrderParams struct {
	Side       Side
	LimitPrice decimal.Decimal

	// MaxBaseQty is the base quantity cap. It must be a positive multiple
	// of the market's QtyIncrement.
	MaxBaseQty decimal.Decimal

	// MaxQuoteQty caps the quote amount spent or received while matching.
	// Zero means uncapped.
	MaxQuoteQty decimal.Decimal

	// OrderType defaults to Limit.
	OrderType OrderType

	SelfTradeBehavior SelfTradeBehavior

	// PostOnly orders never take liquidity. A crossing post-only order is
	// rejected or dropped depending on the market's PostOnlyMode.
	PostOnly bool

	OwnerTag uint64
	FeeTier  uint8

	// MatchLimit bounds how many resting orders this call may examine.
	// Zero means DefaultMatchLimit.
	MatchLimit int
}

// Market is a single order book with its event queue. Markets are not safe
// for concurrent use; callers serialize access, typically by driving each
// market from one goroutine.
type Market struct {
	id     string
	params MarketParams
	book   *OrderBook
	events *EventQueue

	// orderSeq feeds the sequence half of order keys. It only grows, so a
	// key is never reused within a market.
	orderSeq uint64

	quoteUnit decimal.Decimal
}

// NewMarket creates an empty market. A zero EventCapacity, MinBaseOrderSize
// or PostOnlyMode falls back to the default.
func NewMarket(id string, params MarketParams) (*Market, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	params = params.withDefaults()
	return &Market{
		id:        id,
		params:    params,
		book:      newOrderBook(params.BidsCapacity, params.AsksCapacity),
		events:    NewEventQueue(params.EventCapacity),
		quoteUnit: params.TickSize.Mul(params.QtyIncrement),
	}, nil
}

// ID returns the market identifier.
func (m *Market) ID() string {
	return m.id
}

// Params returns the market configuration.
func (m *Market) Params() MarketParams {
	return m.params
}

// Book exposes the order book for read access.
func (m *Market) Book() *OrderBook {
	return m.book
}

// Events exposes the market's event queue. The settlement consumer drains
// it between order submissions.
func (m *Market) Events() *EventQueue {
	return m.events
}

// BestBid and BestAsk return the current best prices, when present.
func (m *Market) BestBid() (decimal.Decimal, bool) {
	return m.bestPrice(Bid)
}

func (m *Market) BestAsk() (decimal.Decimal, bool) {
	return m.bestPrice(Ask)
}

func (m *Market) bestPrice(side Side) (decimal.Decimal, bool) {
	o, ok := m.book.BestOrder(side)
	if !ok {
		return decimal.Decimal{}, false
	}
	return m.PriceFromTicks(o.PriceTicks), true
}

// PriceFromTicks converts a tick count back to a decimal price.
func (m *Market) PriceFromTicks(ticks uint64) decimal.Decimal {
	return m.params.TickSize.Mul(decimal.NewFromUint64(ticks))
}

// BaseFromLots converts a lot count back to a decimal base quantity.
func (m *Market) BaseFromLots(lots uint64) decimal.Decimal {
	return m.params.QtyIncrement.Mul(decimal.NewFromUint64(lots))
}

// QuoteFromUnits converts internal quote units back to a decimal amount.
func (m *Market) QuoteFromUnits(units uint64) decimal.Decimal {
	return m.quoteUnit.Mul(decimal.NewFromUint64(units))
}

// priceTicks quantizes a limit price onto the tick grid. Off-grid prices
// are rejected unless RoundPrices is set, in which case they round toward
// the less aggressive tick: bids down, asks up.
func (m *Market) priceTicks(side Side, price decimal.Decimal) (uint64, error) {
	if price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	rem := price.Mod(m.params.TickSize)
	if !rem.IsZero() {
		if !m.params.RoundPrices {
			return 0, ErrInvalidPrice
		}
		price = price.Sub(rem)
		if side == Ask {
			price = price.Add(m.params.TickSize)
		}
	}
	ticks := price.DivRound(m.params.TickSize, 0).BigInt()
	if !ticks.IsUint64() || ticks.Uint64() == 0 {
		return 0, ErrInvalidPrice
	}
	return ticks.Uint64(), nil
}

// baseLots quantizes a base quantity onto the lot grid. Off-grid
// quantities are rejected.
func (m *Market) baseLots(qty decimal.Decimal) (uint64, error) {
	if qty.Sign() <= 0 {
		return 0, ErrInvalidQuantity
	}
	if !qty.Mod(m.params.QtyIncrement).IsZero() {
		return 0, ErrInvalidQuantity
	}
	lots := qty.DivRound(m.params.QtyIncrement, 0).BigInt()
	if !lots.IsUint64() || lots.Uint64() == 0 {
		return 0, ErrInvalidQuantity
	}
	return lots.Uint64(), nil
}

// quoteUnits quantizes a quote cap, rounding down. A cap too small to buy
// anything is invalid.
func (m *Market) quoteUnits(qty decimal.Decimal) (uint64, error) {
	if qty.Sign() <= 0 {
		return 0, ErrInvalidQuantity
	}
	units := qty.Sub(qty.Mod(m.quoteUnit)).DivRound(m.quoteUnit, 0).BigInt()
	if !units.IsUint64() || units.Uint64() == 0 {
		return 0, ErrInvalidQuantity
	}
	return units.Uint64(), nil
}

func (m *Market) nextOrderSeq() uint64 {
	m.orderSeq++
	return m.orderSeq
}

// NewOrder validates, matches and optionally posts an incoming order. It
// returns the same summary it writes into the event queue register.
//
// Validation happens before any mutation, so a rejected order leaves the
// market untouched. A mid-match ErrEventQueueFull stops matching early:
// events already pushed stand, the book stays consistent, and the caller
// retries the order's remainder after draining the queue.
func (m *Market) NewOrder(p NewOrderParams) (OrderSummary, error) {
	var summary OrderSummary

	orderType := p.OrderType
	if orderType == "" {
		orderType = Limit
	}
	switch orderType {
	case Limit, IOC, FOK:
	default:
		return summary, ErrInvalidParam
	}
	switch p.SelfTradeBehavior {
	case DecrementTake, CancelOldest, CancelNewest, AbortTransaction:
	default:
		return summary, ErrInvalidParam
	}

	limitTicks, err := m.priceTicks(p.Side, p.LimitPrice)
	if err != nil {
		return summary, err
	}
	baseRemaining, err := m.baseLots(p.MaxBaseQty)
	if err != nil {
		return summary, err
	}
	quoteRemaining := uint64(math.MaxUint64)
	if !p.MaxQuoteQty.IsZero() {
		quoteRemaining, err = m.quoteUnits(p.MaxQuoteQty)
		if err != nil {
			return summary, err
		}
	}
	matchLimit := p.MatchLimit
	if matchLimit <= 0 {
		matchLimit = DefaultMatchLimit
	}

	opposite := p.Side.Opposite()

	if p.PostOnly && m.params.PostOnlyMode == PostOnlyReject {
		if best, ok := m.book.BestOrder(opposite); ok && crosses(p.Side, limitTicks, best.PriceTicks) {
			return summary, ErrPostOnlyCrosses
		}
	}

	if orderType == FOK {
		if err := m.checkFillable(p.Side, limitTicks, baseRemaining, quoteRemaining, matchLimit, p.OwnerTag, p.SelfTradeBehavior); err != nil {
			return summary, err
		}
	}

	crossed := true
	dropRemainder := orderType != Limit

	budget := matchLimit
walk:
	for budget > 0 {
		bestH, ok := m.book.Best(opposite)
		if !ok {
			crossed = false
			break
		}
		best := m.book.tree(opposite).Node(bestH)
		tradeTicks := decodePrice(opposite, best.Key.Price)
		if !crosses(p.Side, limitTicks, tradeTicks) {
			crossed = false
			break
		}
		if p.PostOnly {
			// PostOnlyCancel mode: the crossing part is dropped without
			// matching, and crossed suppresses the post below.
			break
		}

		tradeQty := best.Quantity
		if baseRemaining < tradeQty {
			tradeQty = baseRemaining
		}
		if affordable := quoteRemaining / tradeTicks; affordable < tradeQty {
			tradeQty = affordable
		}
		if tradeQty == 0 {
			break
		}

		if best.OwnerTag == p.OwnerTag {
			switch p.SelfTradeBehavior {
			case AbortTransaction:
				m.events.writeRegister(summary)
				return summary, ErrWouldSelfTrade
			case CancelNewest:
				dropRemainder = true
				break walk
			case CancelOldest:
				key, owner := best.Key, best.OwnerTag
				released := best.Quantity
				if err := m.events.Push(newOutEvent(opposite, key, owner, released, true, DeleteReasonSelfTrade)); err != nil {
					m.events.writeRegister(summary)
					return summary, err
				}
				m.book.RemoveOrder(opposite, key)
				// Booting one's own resting order does not consume the
				// match budget.
				continue
			case DecrementTake:
				key, owner := best.Key, best.OwnerTag
				remaining := best.Quantity - tradeQty
				released := tradeQty
				deleted := remaining == 0
				if !deleted && remaining < m.params.MinBaseOrderSize {
					released = best.Quantity
					deleted = true
				}
				if err := m.events.Push(newOutEvent(opposite, key, owner, released, deleted, DeleteReasonSelfTrade)); err != nil {
					m.events.writeRegister(summary)
					return summary, err
				}
				if deleted {
					m.book.RemoveOrder(opposite, key)
				} else {
					best.Quantity = remaining
				}
				baseRemaining -= tradeQty
				quoteRemaining -= tradeQty * tradeTicks
				budget--
				continue
			}
		}

		maker := structure.Leaf{
			Key:      best.Key,
			OwnerTag: best.OwnerTag,
			Quantity: best.Quantity,
			FeeTier:  best.FeeTier,
		}
		quoteTradeQty := tradeQty * tradeTicks
		if err := m.events.Push(newFillEvent(p.Side, maker, p.OwnerTag, p.FeeTier, tradeQty, quoteTradeQty)); err != nil {
			m.events.writeRegister(summary)
			return summary, err
		}
		best.Quantity -= tradeQty
		baseRemaining -= tradeQty
		quoteRemaining -= quoteTradeQty
		summary.TotalBaseQtyMatched += tradeQty
		summary.TotalQuoteQtyMatched += quoteTradeQty

		if best.Quantity == 0 {
			// A full fill already implies removal downstream; no Out event.
			m.book.RemoveOrder(opposite, maker.Key)
		} else if best.Quantity < m.params.MinBaseOrderSize {
			dust := best.Quantity
			if err := m.events.Push(newOutEvent(opposite, maker.Key, maker.OwnerTag, dust, true, DeleteReasonUndersized)); err != nil {
				m.events.writeRegister(summary)
				return summary, err
			}
			m.book.RemoveOrder(opposite, maker.Key)
		}
		budget--
	}

	baseToPost := baseRemaining
	if affordable := quoteRemaining / limitTicks; affordable < baseToPost {
		baseToPost = affordable
	}
	// A remainder that still crosses (match budget or quote cap ran out
	// before the book stopped crossing) must not post: the book never holds
	// crossing orders.
	if !crossed && !dropRemainder && baseToPost >= m.params.MinBaseOrderSize {
		seq := m.nextOrderSeq()
		key := newOrderKey(p.Side, limitTicks, seq)
		leaf := structure.Leaf{
			Key:      key,
			OwnerTag: p.OwnerTag,
			Quantity: baseToPost,
			FeeTier:  p.FeeTier,
		}
		if _, err := m.book.InsertOrder(p.Side, leaf); err != nil {
			logger.Warn("failed to post order remainder",
				"market_id", m.id, "side", p.Side.String(), "qty", baseToPost, "error", err)
			m.events.writeRegister(summary)
			return summary, err
		}
		id := OrderID{Key: key, Side: p.Side, OwnerTag: p.OwnerTag}
		summary.PostedOrderID = &id
		summary.TotalBaseQtyPosted = baseToPost
	}

	m.events.writeRegister(summary)
	return summary, nil
}

// checkFillable simulates the match walk without mutating anything and
// reports whether the walk would consume the full base quantity. The
// simulation applies the same self trade behavior as the real walk, so a
// passing check guarantees the order leaves no unexpected remainder.
func (m *Market) checkFillable(side Side, limitTicks, baseLots, quoteUnits uint64, matchLimit int, owner uint64, behavior SelfTradeBehavior) error {
	remBase, remQuote := baseLots, quoteUnits
	it := m.book.IterMatchable(side.Opposite(), limitTicks)
	budget := matchLimit
	for budget > 0 && remBase > 0 {
		ro, ok := it.Next()
		if !ok {
			break
		}
		trade := ro.Quantity
		if remBase < trade {
			trade = remBase
		}
		if affordable := remQuote / ro.PriceTicks; affordable < trade {
			trade = affordable
		}
		if trade == 0 {
			break
		}
		if ro.OrderID.OwnerTag == owner {
			switch behavior {
			case AbortTransaction:
				return ErrWouldSelfTrade
			case CancelNewest:
				// Matching would stop here and drop the residual.
				return ErrInsufficientLiquidity
			case CancelOldest:
				// The resting order would be booted without consuming the
				// match budget.
				continue
			case DecrementTake:
				// The overlap burns incoming quantity without a fill.
				remBase -= trade
				remQuote -= trade * ro.PriceTicks
				budget--
				continue
			}
		}
		remBase -= trade
		remQuote -= trade * ro.PriceTicks
		budget--
	}
	if remBase > 0 {
		return ErrInsufficientLiquidity
	}
	return nil
}

// CancelOrder removes a resting order. The removal and its Out event must
// land together, so a full event queue fails the call before any mutation.
func (m *Market) CancelOrder(id OrderID) (OrderSummary, error) {
	var summary OrderSummary

	n, ok := m.book.FindOrder(id.Side, id.Key)
	if !ok || n.OwnerTag != id.OwnerTag {
		return summary, ErrOrderNotFound
	}
	if m.events.IsFull() {
		return summary, ErrEventQueueFull
	}
	leaf, _ := m.book.RemoveOrder(id.Side, id.Key)
	if err := m.events.Push(newOutEvent(id.Side, leaf.Key, leaf.OwnerTag, leaf.Quantity, true, DeleteReasonCancelled)); err != nil {
		return summary, err
	}
	summary.TotalBaseQtyMatched = leaf.Quantity
	summary.TotalQuoteQtyMatched = leaf.Quantity * decodePrice(id.Side, leaf.Key.Price)
	m.events.writeRegister(summary)
	return summary, nil
}
