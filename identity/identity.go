package identity

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Bytes is the fixed width of every identity: owners, tokens, holdings,
// buffers and the program itself.
const Bytes = 32

var (
	ErrBadLength = errors.New("identity: must be 32 bytes")
	ErrBadText   = errors.New("identity: invalid base58 text")
)

// ID is a 32 byte identity. Identities that are ed25519 public keys can sign;
// derived authorities are deliberately off the curve and cannot.
type ID [Bytes]byte

// Zero is the all-zero identity.
var Zero ID

// FromBytes copies b into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Bytes {
		return id, fmt.Errorf("%w: got %d", ErrBadLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Parse decodes the base58 text form.
func Parse(s string) (ID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrBadText, err)
	}
	return FromBytes(b)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string { return base58.Encode(id[:]) }

// Bytes returns a slice over a copy of the identity.
func (id ID) Bytes() []byte { return id[:] }

func (id ID) IsZero() bool { return id == Zero }

// Equal compares id with the raw 32 bytes in b.
func (id ID) Equal(b []byte) bool { return bytes.Equal(id[:], b) }

func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ID) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
