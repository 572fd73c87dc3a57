package aob

import (
	"github.com/zenodex/aob/protocol"
	"github.com/zenodex/aob/structure"
)

func recordType(tag EventTag) protocol.RecordType {
	switch tag {
	case EventTagFill:
		return protocol.RecordTypeFill
	case EventTagOut:
		return protocol.RecordTypeOut
	}
	return protocol.RecordTypeUnknown
}

// Record converts the event into its wire form.
func (e Event) Record() protocol.EventRecord {
	var deleted byte
	if e.Delete {
		deleted = 1
	}
	return protocol.EventRecord{
		Type:          recordType(e.Tag),
		Side:          byte(e.Side),
		Reason:        byte(e.Reason),
		Delete:        deleted,
		MakerFeeTier:  e.MakerFeeTier,
		TakerFeeTier:  e.TakerFeeTier,
		KeyPrice:      e.OrderKey.Price,
		KeySeq:        e.OrderKey.Seq,
		MakerOwnerTag: e.MakerOwnerTag,
		TakerOwnerTag: e.TakerOwnerTag,
		BaseQty:       e.BaseQty,
		QuoteQty:      e.QuoteQty,
	}
}

// EventFromRecord converts a decoded wire record back into an event.
func EventFromRecord(r protocol.EventRecord) Event {
	var tag EventTag
	switch r.Type {
	case protocol.RecordTypeFill:
		tag = EventTagFill
	case protocol.RecordTypeOut:
		tag = EventTagOut
	}
	return Event{
		Tag:           tag,
		Side:          Side(r.Side),
		Reason:        DeleteReason(r.Reason),
		Delete:        r.Delete != 0,
		MakerFeeTier:  r.MakerFeeTier,
		TakerFeeTier:  r.TakerFeeTier,
		OrderKey:      structure.Key{Price: r.KeyPrice, Seq: r.KeySeq},
		MakerOwnerTag: r.MakerOwnerTag,
		TakerOwnerTag: r.TakerOwnerTag,
		BaseQty:       r.BaseQty,
		QuoteQty:      r.QuoteQty,
	}
}

// DrainRecords pops up to max events off the queue and returns them encoded
// for the wire. A non-positive max drains everything.
func (q *EventQueue) DrainRecords(max int) [][]byte {
	if max <= 0 || max > q.Len() {
		max = q.Len()
	}
	out := make([][]byte, 0, max)
	for i := 0; i < max; i++ {
		ev, ok := q.PopFront()
		if !ok {
			break
		}
		rec := ev.Record()
		out = append(out, rec.Marshal())
	}
	return out
}
