package stakelist

import (
	"fmt"

	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

// Store is the in-place record list over a caller-owned buffer. The count in
// the buffer header is authoritative; Store caches only the capacity, which
// never changes once a buffer is initialized.
type Store struct {
	data     []byte
	capacity uint16
}

// KeepFunc decides whether a slot survives Retain. slot is exactly
// RecordBytes long; arg is passed through unchanged.
type KeepFunc func(slot []byte, arg []byte) bool

// Init writes a fresh header for capacity records into buf and opens it.
// Slot bytes are left as they are.
func Init(buf []byte, capacity uint16) (*Store, error) {
	need := BufferBytes(capacity)
	if uint64(len(buf)) < need {
		return nil, fault.Wrapf(fault.ErrBufferTooSmall,
			"capacity %d needs %d bytes, got %d", capacity, need, len(buf))
	}
	if err := EncodeHeader(buf, Header{Initialized: true, Capacity: capacity}); err != nil {
		return nil, err
	}
	return &Store{data: buf, capacity: capacity}, nil
}

// Open returns a store over an initialized buffer.
func Open(buf []byte) (*Store, error) {
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if !h.Initialized {
		return nil, fault.ErrUninitializedAccount
	}
	need := BufferBytes(h.Capacity)
	if uint64(len(buf)) < need {
		return nil, fault.Wrapf(fault.ErrBufferTooSmall,
			"capacity %d needs %d bytes, got %d", h.Capacity, need, len(buf))
	}
	if h.Count > h.Capacity {
		return nil, fault.Wrapf(fault.ErrExpectedAccount,
			"header count %d exceeds capacity %d", h.Count, h.Capacity)
	}
	return &Store{data: buf, capacity: h.Capacity}, nil
}

// Len returns the number of live records.
func (s *Store) Len() int { return int(s.count()) }

// Cap returns the fixed capacity.
func (s *Store) Cap() int { return int(s.capacity) }

// Header returns the current header.
func (s *Store) Header() Header {
	return Header{Initialized: true, Capacity: s.capacity, Count: s.count()}
}

func (s *Store) count() uint16 {
	return readU16LE(s.data[headerCountOff : headerCountOff+2])
}

func (s *Store) setCount(n uint16) {
	writeU16LE(s.data[headerCountOff:headerCountOff+2], n)
}

func (s *Store) slot(i uint16) []byte {
	off := SlotOffset(i)
	return s.data[off : off+RecordBytes]
}

// Push appends r. Nothing is written when the store is full.
func (s *Store) Push(r Record) error {
	n := s.count()
	if n >= s.capacity {
		return fault.Wrapf(fault.ErrCapacityExceeded, "count=%d, capacity=%d", n, s.capacity)
	}
	if err := EncodeRecord(s.slot(n), r); err != nil {
		return err
	}
	s.setCount(n + 1)
	return nil
}

// Slot returns a view of live slot i.
func (s *Store) Slot(i int) (View, error) {
	if i < 0 || i >= s.Len() {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSlotRange, i, s.Len())
	}
	return View(s.slot(uint16(i))), nil
}

// At decodes live slot i.
func (s *Store) At(i int) (Record, error) {
	v, err := s.Slot(i)
	if err != nil {
		return Record{}, err
	}
	return v.Record(), nil
}

// Range calls fn for each live slot in order until fn returns false.
func (s *Store) Range(fn func(i int, v View) bool) {
	n := s.count()
	for i := uint16(0); i < n; i++ {
		if !fn(int(i), View(s.slot(i))) {
			return
		}
	}
}

// FindByKeys returns the first live record for (ownerID, tokenID). Only the
// two key ranges of each slot are compared during the scan.
func (s *Store) FindByKeys(ownerID, tokenID identity.ID) (View, bool) {
	n := s.count()
	for i := uint16(0); i < n; i++ {
		slot := s.slot(i)
		if MatchesKeys(slot, ownerID[:], tokenID[:]) {
			return View(slot), true
		}
	}
	return nil, false
}

// Retain compacts the live slots in a single pass, keeping those for which
// keep returns true in their original relative order. It returns the new
// count. Slots between the new and old count are not cleared.
func (s *Store) Retain(keep KeepFunc, arg []byte) int {
	n := s.count()
	var w uint16
	for i := uint16(0); i < n; i++ {
		slot := s.slot(i)
		if !keep(slot, arg) {
			continue
		}
		if w != i {
			copy(s.slot(w), slot)
		}
		w++
	}
	s.setCount(w)
	return int(w)
}
