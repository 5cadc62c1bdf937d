package stakelist

import (
	"errors"

	"github.com/forestrie/go-nftstaking/identity"
)

const (
	// HeaderBytes is the fixed width of the buffer prologue.
	HeaderBytes = 1 + 2 + 2

	// RecordBytes is the fixed width of a staked token record.
	RecordBytes = 3*identity.Bytes + 8 // 104

	// MaxCapacity is the largest capacity a header can express.
	MaxCapacity = ^uint16(0)
)

const (
	headerInitializedOff = 0
	headerCapacityOff    = 1
	headerCountOff       = 3
)

// Record field offsets, relative to the start of a slot.
const (
	OwnerOff     = 0
	TokenOff     = OwnerOff + identity.Bytes
	HolderOff    = TokenOff + identity.Bytes
	StakeTimeOff = HolderOff + identity.Bytes

	stakeTimeBytes = 8
)

// Field names a fixed byte range inside a record.
type Field struct {
	Name   string
	Offset int
	Bytes  int
}

var (
	FieldOwner     = Field{Name: "owner_id", Offset: OwnerOff, Bytes: identity.Bytes}
	FieldToken     = Field{Name: "token_id", Offset: TokenOff, Bytes: identity.Bytes}
	FieldHolder    = Field{Name: "holder_id", Offset: HolderOff, Bytes: identity.Bytes}
	FieldStakeTime = Field{Name: "stake_time", Offset: StakeTimeOff, Bytes: stakeTimeBytes}
)

// Schema lists the record fields in layout order.
var Schema = []Field{FieldOwner, FieldToken, FieldHolder, FieldStakeTime}

var (
	ErrBadRecordSize = errors.New("stakelist: record buffer size invalid")
	ErrSlotRange     = errors.New("stakelist: slot index is not live")
)
