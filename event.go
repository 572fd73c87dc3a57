package aob

import (
	"github.com/zenodex/aob/structure"
)

// EventTag discriminates event queue records.
type EventTag uint8

const (
	EventTagNone EventTag = iota
	// EventTagFill reports a match between the incoming (taker) order and a
	// resting (maker) order.
	EventTagFill
	// EventTagOut reports the removal or reduction of a resting order
	// without a corresponding fill.
	EventTagOut
)

// Event is one fixed-size record in the event queue. It is immutable once
// pushed. Fields are shared between the two variants:
//
//	Fill: Side is the taker side, OrderKey/MakerOwnerTag identify the maker,
//	      BaseQty/QuoteQty are the traded amounts.
//	Out:  Side/OrderKey/MakerOwnerTag identify the removed order, BaseQty is
//	      the released base quantity, Delete reports whether the order left
//	      the book or was reduced in place.
type Event struct {
	Tag          EventTag
	Side         Side
	Reason       DeleteReason
	Delete       bool
	MakerFeeTier uint8
	TakerFeeTier uint8

	OrderKey      structure.Key
	MakerOwnerTag uint64
	TakerOwnerTag uint64
	BaseQty       uint64
	QuoteQty      uint64
}

// MakerOrderID reconstructs the maker's order id from a Fill event.
func (e Event) MakerOrderID() OrderID {
	return OrderID{Key: e.OrderKey, Side: e.Side.Opposite(), OwnerTag: e.MakerOwnerTag}
}

// OutOrderID reconstructs the order id from an Out event.
func (e Event) OutOrderID() OrderID {
	return OrderID{Key: e.OrderKey, Side: e.Side, OwnerTag: e.MakerOwnerTag}
}

func newFillEvent(takerSide Side, maker structure.Leaf, takerOwner uint64, takerFee uint8, baseQty, quoteQty uint64) Event {
	return Event{
		Tag:           EventTagFill,
		Side:          takerSide,
		MakerFeeTier:  maker.FeeTier,
		TakerFeeTier:  takerFee,
		OrderKey:      maker.Key,
		MakerOwnerTag: maker.OwnerTag,
		TakerOwnerTag: takerOwner,
		BaseQty:       baseQty,
		QuoteQty:      quoteQty,
	}
}

func newOutEvent(side Side, key structure.Key, owner uint64, baseQty uint64, deleted bool, reason DeleteReason) Event {
	return Event{
		Tag:           EventTagOut,
		Side:          side,
		Reason:        reason,
		Delete:        deleted,
		OrderKey:      key,
		MakerOwnerTag: owner,
		BaseQty:       baseQty,
	}
}

// OrderSummary is the single mutable register slot next to the event queue.
// It is overwritten by every NewOrder/CancelOrder call and describes that
// call's cumulative outcome.
//
// For NewOrder the quantities are what was matched against the opposing
// side and what was posted as a resting remainder. For CancelOrder they
// describe what was left of the order in the book when it was removed.
type OrderSummary struct {
	// PostedOrderID is set when a remainder was written into the book.
	PostedOrderID        *OrderID
	TotalBaseQtyMatched  uint64
	TotalQuoteQtyMatched uint64
	TotalBaseQtyPosted   uint64
}
