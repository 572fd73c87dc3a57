package protocol

import "errors"

// RecordType discriminates wire records.
type RecordType byte

const (
	RecordTypeUnknown RecordType = iota
	// RecordTypeFill is a match between a taker and a resting maker.
	RecordTypeFill
	// RecordTypeOut is the removal or reduction of a resting order.
	RecordTypeOut
)

// ErrBadRecord is returned when a record is truncated, fails its checksum
// or carries an unknown type.
var ErrBadRecord = errors.New("the record is malformed")

// EventRecord is the fixed-size wire form of one event queue record, the
// unit a settlement consumer reads off the transport. All integers are
// little-endian on the wire and every record carries its own CRC32.
type EventRecord struct {
	Type         RecordType
	Side         byte // 0 bid, 1 ask
	Reason       byte
	Delete       byte
	MakerFeeTier byte
	TakerFeeTier byte

	KeyPrice      uint64
	KeySeq        uint64
	MakerOwnerTag uint64
	TakerOwnerTag uint64
	BaseQty       uint64
	QuoteQty      uint64
}
