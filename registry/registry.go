package registry

import (
	"encoding/binary"

	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

// Registry layout
//
// .         | initialized | manager_id | staked_count | store_ref |
// .         | 0           | 1       32 | 33        34 | 35     66 |
// bytes     | 1           |     32     |      2 (LE)  |    32     |
const (
	initializedOff = 0
	managerOff     = 1
	stakedCountOff = managerOff + identity.Bytes
	storeRefOff    = stakedCountOff + 2

	// Bytes is the fixed width of an encoded registry.
	Bytes = storeRefOff + identity.Bytes // 67
)

// Registry binds a manager to exactly one stake list buffer.
type Registry struct {
	Initialized bool
	ManagerID   identity.ID
	// StakedCount mirrors the stake list header count. It is advisory; the
	// header is authoritative.
	StakedCount uint16
	StoreRef    identity.ID
}

// Initialize returns a registry, stored at self, bound to storeRef.
func Initialize(self, managerID, storeRef identity.ID) (Registry, error) {
	if storeRef == self {
		return Registry{}, fault.Wrapf(fault.ErrAlreadyInUse,
			"the registry %s can not also be the stake list", self)
	}
	return Registry{
		Initialized: true,
		ManagerID:   managerID,
		StoreRef:    storeRef,
	}, nil
}

// CheckStore fails unless provided is the bound stake list.
func (r Registry) CheckStore(provided identity.ID) error {
	if provided != r.StoreRef {
		return fault.Wrapf(fault.ErrInvalidStakeList,
			"expected %s, received %s", r.StoreRef, provided)
	}
	return nil
}

// Decode reads a registry from buf.
func Decode(buf []byte) (Registry, error) {
	if len(buf) < Bytes {
		return Registry{}, fault.Wrapf(fault.ErrBufferTooSmall,
			"registry needs %d bytes, got %d", Bytes, len(buf))
	}
	var r Registry
	r.Initialized = buf[initializedOff] != 0
	copy(r.ManagerID[:], buf[managerOff:managerOff+identity.Bytes])
	r.StakedCount = binary.LittleEndian.Uint16(buf[stakedCountOff : stakedCountOff+2])
	copy(r.StoreRef[:], buf[storeRefOff:storeRefOff+identity.Bytes])
	return r, nil
}

// Encode writes r into buf.
func Encode(buf []byte, r Registry) error {
	if len(buf) < Bytes {
		return fault.Wrapf(fault.ErrBufferTooSmall,
			"registry needs %d bytes, got %d", Bytes, len(buf))
	}
	buf[initializedOff] = 0
	if r.Initialized {
		buf[initializedOff] = 1
	}
	copy(buf[managerOff:managerOff+identity.Bytes], r.ManagerID[:])
	binary.LittleEndian.PutUint16(buf[stakedCountOff:stakedCountOff+2], r.StakedCount)
	copy(buf[storeRefOff:storeRefOff+identity.Bytes], r.StoreRef[:])
	return nil
}

func (r Registry) MarshalBinary() ([]byte, error) {
	b := make([]byte, Bytes)
	return b, Encode(b, r)
}

func (r *Registry) UnmarshalBinary(b []byte) error {
	v, err := Decode(b)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
