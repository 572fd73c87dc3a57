package aob

import "errors"

var (
	// ErrInvalidPrice is returned when a limit price violates the tick grid.
	ErrInvalidPrice = errors.New("the price is not on the tick grid")
	// ErrInvalidQuantity is returned when a quantity is zero or not a
	// multiple of the minimum quantity increment.
	ErrInvalidQuantity = errors.New("the quantity is invalid")
	// ErrOutOfSpace is returned when the book's slab is exhausted and the
	// order remainder could not be posted.
	ErrOutOfSpace = errors.New("the orderbook is out of space")
	// ErrEventQueueFull is returned when an event could not be recorded.
	// The caller should drain the queue and retry the same logical order.
	ErrEventQueueFull = errors.New("the event queue is full")
	// ErrOrderNotFound is returned when a cancel target is absent (already
	// filled or already cancelled).
	ErrOrderNotFound = errors.New("the order could not be found")
	// ErrWouldSelfTrade is returned under SelfTradeBehavior AbortTransaction.
	ErrWouldSelfTrade = errors.New("the order would self trade")
	// ErrPostOnlyCrosses is returned under PostOnlyReject when a post-only
	// order's limit price crosses the opposing best.
	ErrPostOnlyCrosses = errors.New("the post-only order would cross the spread")
	// ErrInsufficientLiquidity is returned when a FOK order cannot be fully
	// filled.
	ErrInsufficientLiquidity = errors.New("there is not enough depth to fill the order")
	// ErrMarketNotFound is returned when a market id is unknown.
	ErrMarketNotFound = errors.New("the market could not be found")
	// ErrMarketExists is returned when a market id is already registered.
	ErrMarketExists = errors.New("the market already exists")
	// ErrInvalidParam is returned when a parameter is malformed.
	ErrInvalidParam = errors.New("the param is invalid")
	// ErrSnapshotCorrupted is returned when a snapshot fails its checksum
	// or cannot be decoded.
	ErrSnapshotCorrupted = errors.New("the snapshot is corrupted")
)
