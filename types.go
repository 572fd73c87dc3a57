package aob

import (
	"github.com/zenodex/aob/structure"
)

// Side represents the order side.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// OrderType represents the type of order.
type OrderType string

const (
	// Limit orders match what they can and post the remainder.
	Limit OrderType = "limit"
	// IOC orders match what they can and drop the remainder.
	IOC OrderType = "ioc"
	// FOK orders match fully or not at all.
	FOK OrderType = "fok"
)

// SelfTradeBehavior describes what happens when an incoming order would
// match a resting order with the same owner tag.
type SelfTradeBehavior uint8

const (
	// DecrementTake reduces both orders by the overlapping quantity without
	// crediting a trade. The resting order's reduction is reported through
	// an Out event so downstream ledgers stay in sync.
	DecrementTake SelfTradeBehavior = iota
	// CancelOldest removes the resting order entirely and continues
	// matching.
	CancelOldest
	// CancelNewest stops matching; the residual incoming quantity is
	// dropped and never posted.
	CancelNewest
	// AbortTransaction fails the call with ErrWouldSelfTrade.
	AbortTransaction
)

// PostOnlyMode selects the market-wide policy for post-only orders whose
// limit price crosses the opposing best.
type PostOnlyMode uint8

const (
	// PostOnlyReject fails the crossing order with ErrPostOnlyCrosses
	// before any mutation.
	PostOnlyReject PostOnlyMode = iota
	// PostOnlyCancel quietly drops the crossing order: nothing matches and
	// nothing posts, the summary shows zero everywhere.
	PostOnlyCancel
)

// DeleteReason explains why an Out event removed or reduced an order.
type DeleteReason uint8

const (
	DeleteReasonNone DeleteReason = iota
	// DeleteReasonCancelled is set by cancel_order.
	DeleteReasonCancelled
	// DeleteReasonSelfTrade is set when the self-trade policy removed or
	// reduced a resting order.
	DeleteReasonSelfTrade
	// DeleteReasonUndersized is set when a partial fill left a resting
	// order below the market's minimum base order size.
	DeleteReasonUndersized
)

// OrderID uniquely identifies a resting order: its composite sort key, the
// side whose tree holds it, and the opaque owner tag attached at insertion.
// Clients keep it around to cancel and to recognize their own orders in
// events.
type OrderID struct {
	Key      structure.Key
	Side     Side
	OwnerTag uint64
}

// PriceTicks decodes the limit price (in ticks) embedded in the key.
func (id OrderID) PriceTicks() uint64 {
	return decodePrice(id.Side, id.Key.Price)
}

// Seq returns the order's arrival sequence number.
func (id OrderID) Seq() uint64 {
	return id.Key.Seq
}

// encodePrice maps price ticks into the key space so that an ascending key
// walk yields best-price-first on either side: asks ascend with price, bids
// store the bitwise complement. The mapping is its own inverse.
func encodePrice(side Side, ticks uint64) uint64 {
	if side == Bid {
		return ^ticks
	}
	return ticks
}

func decodePrice(side Side, encoded uint64) uint64 {
	return encodePrice(side, encoded)
}

// newOrderKey builds the composite key for a fresh order.
func newOrderKey(side Side, priceTicks, seq uint64) structure.Key {
	return structure.Key{Price: encodePrice(side, priceTicks), Seq: seq}
}

// RestingOrder is the read-only view of one order sitting in the book.
type RestingOrder struct {
	OrderID    OrderID
	PriceTicks uint64
	Quantity   uint64 // remaining base lots
	FeeTier    uint8
}
