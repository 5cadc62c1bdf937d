// Package custody keeps token holdings and their authorities.
//
// A holding carries an amount of a single token kind and is controlled by one
// authority identity. When that authority is a derived identity (one with no
// private key) the holder must present an authority.Capability which the
// ledger re-derives under its program identity before acting.
package custody

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/forestrie/go-nftstaking/authority"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

var (
	ErrHoldingExists       = errors.New("custody: holding already exists")
	ErrUnauthorized        = errors.New("custody: authority does not control the holding")
	ErrInsufficientFunds   = errors.New("custody: insufficient funds")
	ErrTokenMismatch       = errors.New("custody: destination holds a different token")
	ErrNonZeroBalance      = errors.New("custody: holding still has a balance")
	ErrNoTransaction       = errors.New("custody: no transaction in progress")
	ErrTransactionUnderway = errors.New("custody: transaction already in progress")
)

// Holding is one token account.
type Holding struct {
	Token     identity.ID
	Authority identity.ID
	Amount    uint64
	// Reserve is the native value backing the holding, returned on Close.
	Reserve uint64
}

type state struct {
	holdings map[identity.ID]Holding
	native   map[identity.ID]uint64
}

func (s state) clone() state {
	return state{holdings: maps.Clone(s.holdings), native: maps.Clone(s.native)}
}

// Ledger is an in memory custody implementation. It is safe for concurrent
// use. Begin, Commit and Abort bracket a unit of work: mutations made between
// Begin and Abort are discarded.
type Ledger struct {
	programID identity.ID

	mu       sync.Mutex
	cur      state
	snapshot *state

	// txMu is held from Begin until Commit or Abort.
	txMu sync.Mutex
}

// NewLedger returns an empty ledger that accepts capabilities derived under
// programID.
func NewLedger(programID identity.ID) *Ledger {
	return &Ledger{
		programID: programID,
		cur: state{
			holdings: map[identity.ID]Holding{},
			native:   map[identity.ID]uint64{},
		},
	}
}

// Associated returns the holding id used when a transfer has to create a
// destination holding of tokenID for ownerID.
func Associated(ownerID, tokenID identity.ID) identity.ID {
	h := sha256.New()
	h.Write([]byte("custody/associated"))
	h.Write(ownerID[:])
	h.Write(tokenID[:])
	var id identity.ID
	copy(id[:], h.Sum(nil))
	return id
}

// Create registers a new holding under holdingID.
func (l *Ledger) Create(holdingID identity.ID, h Holding) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cur.holdings[holdingID]; ok {
		return fmt.Errorf("%w: %s", ErrHoldingExists, holdingID)
	}
	l.cur.holdings[holdingID] = h
	return nil
}

// Inspect returns the holding stored under holdingID.
func (l *Ledger) Inspect(holdingID identity.ID) (Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.cur.holdings[holdingID]
	if !ok {
		return Holding{}, fault.Wrapf(fault.ErrExpectedAccount, "no holding %s", holdingID)
	}
	return h, nil
}

// NativeBalance returns the native value credited to id by closed holdings.
func (l *Ledger) NativeBalance(id identity.ID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cur.native[id]
}

// ReassignAuthority hands control of the holding from currentAuthority to
// newAuthority. currentAuthority is expected to have signed the request.
func (l *Ledger) ReassignAuthority(holdingID, newAuthority, currentAuthority identity.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.cur.holdings[holdingID]
	if !ok {
		return fault.Wrapf(fault.ErrExpectedAccount, "no holding %s", holdingID)
	}
	if h.Authority != currentAuthority {
		return fmt.Errorf("%w: %s is controlled by %s, not %s",
			ErrUnauthorized, holdingID, h.Authority, currentAuthority)
	}
	h.Authority = newAuthority
	l.cur.holdings[holdingID] = h
	return nil
}

func (l *Ledger) authorize(holdingID identity.ID, c authority.Capability) (Holding, error) {
	h, ok := l.cur.holdings[holdingID]
	if !ok {
		return Holding{}, fault.Wrapf(fault.ErrExpectedAccount, "no holding %s", holdingID)
	}
	if err := c.Authorizes(l.programID, h.Authority); err != nil {
		return Holding{}, fmt.Errorf("%w: %s: %v", ErrUnauthorized, holdingID, err)
	}
	return h, nil
}

// Transfer moves amount out of holdingID to destinationID. The destination is
// an existing holding of the same token, or an owner identity, in which case
// the owner's associated holding is credited and created when absent.
func (l *Ledger) Transfer(holdingID, destinationID identity.ID, c authority.Capability, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.authorize(holdingID, c)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientFunds, holdingID, src.Amount, amount)
	}

	dstID := destinationID
	dst, ok := l.cur.holdings[dstID]
	if !ok {
		dstID = Associated(destinationID, src.Token)
		dst, ok = l.cur.holdings[dstID]
		if !ok {
			dst = Holding{Token: src.Token, Authority: destinationID}
		}
	}
	if dst.Token != src.Token {
		return fmt.Errorf("%w: %s", ErrTokenMismatch, dstID)
	}
	if dstID == holdingID {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return fault.Wrapf(fault.ErrAmountOverflow, "crediting %s", dstID)
	}

	src.Amount -= amount
	dst.Amount += amount
	l.cur.holdings[holdingID] = src
	l.cur.holdings[dstID] = dst
	return nil
}

// Close removes an empty holding and credits its reserve to destinationID.
func (l *Ledger) Close(holdingID, destinationID identity.ID, c authority.Capability) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.authorize(holdingID, c)
	if err != nil {
		return err
	}
	if h.Amount != 0 {
		return fmt.Errorf("%w: %s holds %d", ErrNonZeroBalance, holdingID, h.Amount)
	}
	delete(l.cur.holdings, holdingID)
	l.cur.native[destinationID] += h.Reserve
	return nil
}

// Begin starts a unit of work. It blocks while another is underway.
func (l *Ledger) Begin() error {
	l.txMu.Lock()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot != nil {
		l.txMu.Unlock()
		return ErrTransactionUnderway
	}
	s := l.cur.clone()
	l.snapshot = &s
	return nil
}

// Commit keeps every mutation made since Begin.
func (l *Ledger) Commit() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot == nil {
		return ErrNoTransaction
	}
	l.snapshot = nil
	l.txMu.Unlock()
	return nil
}

// Abort discards every mutation made since Begin.
func (l *Ledger) Abort() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot == nil {
		return ErrNoTransaction
	}
	l.cur = *l.snapshot
	l.snapshot = nil
	l.txMu.Unlock()
	return nil
}
