package aob

import (
	"encoding/binary"
	"encoding/json"
	"hash/crc32"

	"github.com/zenodex/aob/structure"
)

// SnapshotOrder is one resting order in a snapshot, in internal units.
type SnapshotOrder struct {
	PriceTicks uint64 `json:"price_ticks"`
	Seq        uint64 `json:"seq"`
	OwnerTag   uint64 `json:"owner_tag"`
	Quantity   uint64 `json:"quantity"`
	FeeTier    uint8  `json:"fee_tier"`
}

// MarketSnapshot captures the full state of one market. The event queue is
// expected to be drained before a snapshot is taken; only its sequence
// number is carried so restored markets keep numbering events where the old
// one stopped.
type MarketSnapshot struct {
	MarketID    string          `json:"market_id"`
	OrderSeq    uint64          `json:"order_seq"`
	EventSeqNum uint64          `json:"event_seq_num"`
	Bids        []SnapshotOrder `json:"bids"` // best price first
	Asks        []SnapshotOrder `json:"asks"` // best price first
}

func snapshotSide(orders []RestingOrder) []SnapshotOrder {
	out := make([]SnapshotOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, SnapshotOrder{
			PriceTicks: o.PriceTicks,
			Seq:        o.OrderID.Seq(),
			OwnerTag:   o.OrderID.OwnerTag,
			Quantity:   o.Quantity,
			FeeTier:    o.FeeTier,
		})
	}
	return out
}

// TakeSnapshot captures the market's current state.
func (m *Market) TakeSnapshot() *MarketSnapshot {
	return &MarketSnapshot{
		MarketID:    m.id,
		OrderSeq:    m.orderSeq,
		EventSeqNum: m.events.SeqNum(),
		Bids:        snapshotSide(m.book.Orders(Bid)),
		Asks:        snapshotSide(m.book.Orders(Ask)),
	}
}

// RestoreMarket rebuilds a market from a snapshot. The params must match
// the ones the snapshot was taken under; in particular the capacities must
// still hold every snapshotted order.
func RestoreMarket(snap *MarketSnapshot, params MarketParams) (*Market, error) {
	m, err := NewMarket(snap.MarketID, params)
	if err != nil {
		return nil, err
	}
	if len(snap.Bids) > int(params.BidsCapacity) || len(snap.Asks) > int(params.AsksCapacity) {
		return nil, ErrOutOfSpace
	}
	restore := func(side Side, orders []SnapshotOrder) error {
		for _, o := range orders {
			leaf := structure.Leaf{
				Key:      newOrderKey(side, o.PriceTicks, o.Seq),
				OwnerTag: o.OwnerTag,
				Quantity: o.Quantity,
				FeeTier:  o.FeeTier,
			}
			if _, err := m.book.InsertOrder(side, leaf); err != nil {
				return err
			}
		}
		return nil
	}
	if err := restore(Bid, snap.Bids); err != nil {
		return nil, err
	}
	if err := restore(Ask, snap.Asks); err != nil {
		return nil, err
	}
	m.orderSeq = snap.OrderSeq
	m.events.seqNum = snap.EventSeqNum
	return m, nil
}

// Encode serializes the snapshot as JSON followed by a little-endian CRC32
// of the JSON bytes.
func (s *MarketSnapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.LittleEndian.PutUint32(out[len(data):], crc32.ChecksumIEEE(data))
	return out, nil
}

// DecodeSnapshot verifies the checksum and decodes the snapshot.
func DecodeSnapshot(data []byte) (*MarketSnapshot, error) {
	if len(data) < 4 {
		return nil, ErrSnapshotCorrupted
	}
	payload, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, ErrSnapshotCorrupted
	}
	var s MarketSnapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, ErrSnapshotCorrupted
	}
	return &s, nil
}
