package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// RecordSize is the exact wire size of one encoded EventRecord:
// a 6 byte header, six 8 byte integers and a 4 byte CRC32.
const RecordSize = 6 + 6*8 + 4

// Marshal encodes the record into its fixed wire form.
func (r *EventRecord) Marshal() []byte {
	buf := make([]byte, RecordSize)
	buf[0] = byte(r.Type)
	buf[1] = r.Side
	buf[2] = r.Reason
	buf[3] = r.Delete
	buf[4] = r.MakerFeeTier
	buf[5] = r.TakerFeeTier
	binary.LittleEndian.PutUint64(buf[6:], r.KeyPrice)
	binary.LittleEndian.PutUint64(buf[14:], r.KeySeq)
	binary.LittleEndian.PutUint64(buf[22:], r.MakerOwnerTag)
	binary.LittleEndian.PutUint64(buf[30:], r.TakerOwnerTag)
	binary.LittleEndian.PutUint64(buf[38:], r.BaseQty)
	binary.LittleEndian.PutUint64(buf[46:], r.QuoteQty)
	binary.LittleEndian.PutUint32(buf[54:], crc32.ChecksumIEEE(buf[:54]))
	return buf
}

// Unmarshal decodes and verifies one record from data, which must be
// exactly RecordSize bytes.
func Unmarshal(data []byte) (EventRecord, error) {
	var r EventRecord
	if len(data) != RecordSize {
		return r, ErrBadRecord
	}
	sum := binary.LittleEndian.Uint32(data[54:])
	if crc32.ChecksumIEEE(data[:54]) != sum {
		return r, ErrBadRecord
	}
	r.Type = RecordType(data[0])
	switch r.Type {
	case RecordTypeFill, RecordTypeOut:
	default:
		return EventRecord{}, ErrBadRecord
	}
	r.Side = data[1]
	r.Reason = data[2]
	r.Delete = data[3]
	r.MakerFeeTier = data[4]
	r.TakerFeeTier = data[5]
	r.KeyPrice = binary.LittleEndian.Uint64(data[6:])
	r.KeySeq = binary.LittleEndian.Uint64(data[14:])
	r.MakerOwnerTag = binary.LittleEndian.Uint64(data[22:])
	r.TakerOwnerTag = binary.LittleEndian.Uint64(data[30:])
	r.BaseQty = binary.LittleEndian.Uint64(data[38:])
	r.QuoteQty = binary.LittleEndian.Uint64(data[46:])
	return r, nil
}
