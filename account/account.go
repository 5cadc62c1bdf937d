package account

import (
	"github.com/forestrie/go-nftstaking/identity"
)

// Info is an account as presented to the program for one invocation: its
// identity, the program that owns its data, its balance, the data buffer
// itself and whether the invocation carries the account's signature.
//
// Data is the fixed-size, externally owned buffer. The program mutates it in
// place and never replaces or resizes it.
type Info struct {
	Key      identity.ID
	Owner    identity.ID
	Balance  uint64
	Data     []byte
	Signer   bool
	Writable bool
}

// New returns an account with a zero-filled buffer of size bytes.
func New(key, owner identity.ID, balance uint64, size int) *Info {
	return &Info{Key: key, Owner: owner, Balance: balance, Data: make([]byte, size)}
}

// Clone returns a deep copy; the copy's buffer is independent.
func (a *Info) Clone() *Info {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// Meta describes an account position in a request.
type Meta struct {
	Key      identity.ID
	Signer   bool
	Writable bool
}

// Writable places key in a request as a writable account.
func Writable(key identity.ID, signer bool) Meta {
	return Meta{Key: key, Signer: signer, Writable: true}
}

// ReadOnly places key in a request as an account the program must not change.
func ReadOnly(key identity.ID, signer bool) Meta {
	return Meta{Key: key, Signer: signer}
}
