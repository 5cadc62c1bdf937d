package stakelist

import (
	"bytes"
	"fmt"

	"github.com/forestrie/go-nftstaking/identity"
)

// Record describes one staked token.
type Record struct {
	OwnerID   identity.ID
	TokenID   identity.ID
	HolderID  identity.ID
	StakeTime int64
}

// EncodeRecord writes r into dst[0:RecordBytes].
func EncodeRecord(dst []byte, r Record) error {
	if len(dst) < RecordBytes {
		return fmt.Errorf("%w: want=%d, got=%d", ErrBadRecordSize, RecordBytes, len(dst))
	}
	copy(dst[OwnerOff:OwnerOff+identity.Bytes], r.OwnerID[:])
	copy(dst[TokenOff:TokenOff+identity.Bytes], r.TokenID[:])
	copy(dst[HolderOff:HolderOff+identity.Bytes], r.HolderID[:])
	writeI64LE(dst[StakeTimeOff:StakeTimeOff+stakeTimeBytes], r.StakeTime)
	return nil
}

// DecodeRecord reads a record from src[0:RecordBytes].
func DecodeRecord(src []byte) (Record, error) {
	if len(src) < RecordBytes {
		return Record{}, fmt.Errorf("%w: want=%d, got=%d", ErrBadRecordSize, RecordBytes, len(src))
	}
	return View(src[:RecordBytes]).Record(), nil
}

// MarshalBinary returns the RecordBytes encoding of r.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordBytes)
	return b, EncodeRecord(b, r)
}

// UnmarshalBinary decodes a record from the first RecordBytes of b.
func (r *Record) UnmarshalBinary(b []byte) error {
	v, err := DecodeRecord(b)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// View is a zero-copy window onto a live slot. It aliases the buffer, so it
// is only valid until the next Push or Retain.
type View []byte

func (v View) Owner() identity.ID  { return idAt(v, OwnerOff) }
func (v View) Token() identity.ID  { return idAt(v, TokenOff) }
func (v View) Holder() identity.ID { return idAt(v, HolderOff) }
func (v View) StakeTime() int64    { return readI64LE(v[StakeTimeOff : StakeTimeOff+stakeTimeBytes]) }

// Record copies the view out of the buffer.
func (v View) Record() Record {
	return Record{
		OwnerID:   v.Owner(),
		TokenID:   v.Token(),
		HolderID:  v.Holder(),
		StakeTime: v.StakeTime(),
	}
}

func idAt(b []byte, off int) identity.ID {
	var id identity.ID
	copy(id[:], b[off:off+identity.Bytes])
	return id
}

// MatchesKeys reports whether slot holds (ownerID, tokenID). Only the two key
// ranges are read.
func MatchesKeys(slot []byte, ownerID, tokenID []byte) bool {
	return bytes.Equal(slot[OwnerOff:OwnerOff+identity.Bytes], ownerID) &&
		bytes.Equal(slot[TokenOff:TokenOff+identity.Bytes], tokenID)
}

// HolderDiffers is the Retain predicate used on withdrawal: it keeps every
// slot whose holder_id is not holderID.
func HolderDiffers(slot []byte, holderID []byte) bool {
	return !bytes.Equal(slot[HolderOff:HolderOff+identity.Bytes], holderID)
}
