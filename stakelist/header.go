package stakelist

import (
	"github.com/forestrie/go-nftstaking/fault"
)

// Header is the fixed prologue of a stake list buffer.
type Header struct {
	Initialized bool
	Capacity    uint16
	Count       uint16
}

// DecodeHeader reads the header from the first HeaderBytes of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderBytes {
		return Header{}, fault.Wrapf(fault.ErrBufferTooSmall, "header needs %d bytes, got %d", HeaderBytes, len(buf))
	}
	return Header{
		Initialized: buf[headerInitializedOff] != 0,
		Capacity:    readU16LE(buf[headerCapacityOff : headerCapacityOff+2]),
		Count:       readU16LE(buf[headerCountOff : headerCountOff+2]),
	}, nil
}

// EncodeHeader writes h into the first HeaderBytes of buf.
func EncodeHeader(buf []byte, h Header) error {
	if len(buf) < HeaderBytes {
		return fault.Wrapf(fault.ErrBufferTooSmall, "header needs %d bytes, got %d", HeaderBytes, len(buf))
	}
	buf[headerInitializedOff] = 0
	if h.Initialized {
		buf[headerInitializedOff] = 1
	}
	writeU16LE(buf[headerCapacityOff:headerCapacityOff+2], h.Capacity)
	writeU16LE(buf[headerCountOff:headerCountOff+2], h.Count)
	return nil
}

// MarshalBinary returns the HeaderBytes encoding of h.
func (h Header) MarshalBinary() ([]byte, error) {
	b := make([]byte, HeaderBytes)
	return b, EncodeHeader(b, h)
}

// UnmarshalBinary decodes a header from the first HeaderBytes of b.
func (h *Header) UnmarshalBinary(b []byte) error {
	v, err := DecodeHeader(b)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// BufferBytes returns the buffer size required for capacity records.
func BufferBytes(capacity uint16) uint64 {
	return uint64(HeaderBytes) + uint64(capacity)*RecordBytes
}

// SlotOffset returns the byte offset of slot i within the buffer.
func SlotOffset(i uint16) uint64 {
	return uint64(HeaderBytes) + uint64(i)*RecordBytes
}
