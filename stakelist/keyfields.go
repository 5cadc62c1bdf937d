package stakelist

// KeyFieldView describes how to iterate one field inside the contiguous
// record array without copying:
//
//	record[0:32]   = owner_id
//	record[32:64]  = token_id
//	record[64:96]  = holder_id
//	record[96:104] = stake_time (int64 LE)
type KeyFieldView struct {
	Data        []byte
	RecordBytes uint64
	KeyOffset   uint64
	KeyBytes    uint64
	Count       uint32 // number of live records
}

// KeyFields returns a descriptor for field over the live records. Data
// starts at slot 0, so field i lives at Data[i*RecordBytes+KeyOffset:].
func (s *Store) KeyFields(field Field) KeyFieldView {
	return KeyFieldView{
		Data:        s.data[HeaderBytes:BufferBytes(s.capacity)],
		RecordBytes: RecordBytes,
		KeyOffset:   uint64(field.Offset),
		KeyBytes:    uint64(field.Bytes),
		Count:       uint32(s.count()),
	}
}

// Key returns field bytes for record i of the view. Caller ensures i < Count.
func (kv KeyFieldView) Key(i uint32) []byte {
	off := uint64(i)*kv.RecordBytes + kv.KeyOffset
	return kv.Data[off : off+kv.KeyBytes]
}
