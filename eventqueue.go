package aob

// EventQueue is a bounded circular buffer of fixed-size event records plus
// the OrderSummary register. The matching engine is the producer; an
// external settlement process drains it with PopFront/PopN.
//
// A push against a full queue fails instead of overwriting: every event is
// unrecoverable input for a downstream ledger, so back-pressure is pushed
// onto the producer rather than silently dropping records.
type EventQueue struct {
	buf    []Event
	head   int
	count  int
	seqNum uint64

	register    OrderSummary
	registerSet bool
}

// NewEventQueue creates an empty queue with room for capacity events.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{
		buf: make([]Event, capacity),
	}
}

// Push appends an event to the back of the queue. It returns
// ErrEventQueueFull and leaves the buffer and seqNum unchanged when the
// queue is at capacity.
func (q *EventQueue) Push(ev Event) error {
	if q.count == len(q.buf) {
		return ErrEventQueueFull
	}
	q.buf[(q.head+q.count)%len(q.buf)] = ev
	q.count++
	q.seqNum++
	return nil
}

// PopFront removes and returns the event at the front of the queue.
func (q *EventQueue) PopFront() (Event, bool) {
	if q.count == 0 {
		return Event{}, false
	}
	ev := q.buf[q.head]
	q.buf[q.head] = Event{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return ev, true
}

// Peek returns the event offset positions behind the front without
// consuming it.
func (q *EventQueue) Peek(offset int) (Event, bool) {
	if offset < 0 || offset >= q.count {
		return Event{}, false
	}
	return q.buf[(q.head+offset)%len(q.buf)], true
}

// PopN drops up to n events from the front and returns how many were
// dropped. Consumers that settle events in batches use this after reading
// them with Peek.
func (q *EventQueue) PopN(n int) int {
	if n > q.count {
		n = q.count
	}
	for i := 0; i < n; i++ {
		q.buf[q.head] = Event{}
		q.head = (q.head + 1) % len(q.buf)
	}
	q.count -= n
	return n
}

// Len returns the number of occupied slots.
func (q *EventQueue) Len() int {
	return q.count
}

// Cap returns the fixed capacity.
func (q *EventQueue) Cap() int {
	return len(q.buf)
}

// IsFull reports whether the next Push would fail.
func (q *EventQueue) IsFull() bool {
	return q.count == len(q.buf)
}

// IsEmpty reports whether the queue holds no events.
func (q *EventQueue) IsEmpty() bool {
	return q.count == 0
}

// SeqNum returns the monotonic count of events ever pushed.
func (q *EventQueue) SeqNum() uint64 {
	return q.seqNum
}

// Register returns the current order summary, if one was written since the
// last clear. Callers read it immediately after NewOrder/CancelOrder.
func (q *EventQueue) Register() (OrderSummary, bool) {
	return q.register, q.registerSet
}

// ClearRegister empties the register slot.
func (q *EventQueue) ClearRegister() {
	q.register = OrderSummary{}
	q.registerSet = false
}

func (q *EventQueue) writeRegister(s OrderSummary) {
	q.register = s
	q.registerSet = true
}
