// Package host runs programs over registered accounts with all or nothing
// semantics.
//
// Each invocation works on private copies of the accounts it names. The copies
// replace the registered accounts only if the program succeeds; otherwise they
// are dropped and every participant is aborted. Invocations are serialized.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/instruction"
)

var (
	ErrReadOnlyModified = errors.New("host: program modified a read only account")
	ErrResized          = errors.New("host: program resized an account buffer")
)

// Program processes one request over its positional accounts.
type Program interface {
	Process(accts []*account.Info, input []byte) error
}

// Participant is a collaborator whose state joins the invocation boundary.
type Participant interface {
	Begin() error
	Commit() error
	Abort() error
}

// Committer persists accounts changed by a successful invocation. Accounts
// are committed one at a time in request order, so durability is per account:
// a Commit failing part way through leaves the accounts already committed
// written while the invocation itself is discarded.
type Committer interface {
	Commit(ctx context.Context, acct *account.Info) error
}

type Options struct {
	Participants []Participant
	Committer    Committer
}

// Option is a generic option type. Implementations type assert to their
// options target and ignore options that do not apply.
type Option func(any)

func WithParticipant(p Participant) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Participants = append(o.Participants, p)
		}
	}
}

func WithCommitter(c Committer) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Committer = c
		}
	}
}

type Host struct {
	Log  logger.Logger
	opts Options

	mu       sync.Mutex
	programs map[identity.ID]Program
	accounts map[identity.ID]*account.Info
}

func New(log logger.Logger, opts ...Option) *Host {
	h := &Host{
		Log:      log,
		programs: map[identity.ID]Program{},
		accounts: map[identity.ID]*account.Info{},
	}
	for _, o := range opts {
		o(&h.opts)
	}
	return h
}

// Deploy registers program under programID.
func (h *Host) Deploy(programID identity.ID, program Program) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.programs[programID] = program
}

// Register adds or replaces an account. The host keeps its own copy.
func (h *Host) Register(acct *account.Info) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := acct.Clone()
	c.Signer, c.Writable = false, false
	h.accounts[acct.Key] = c
}

// Account returns a copy of the registered account.
func (h *Host) Account(key identity.ID) (*account.Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.accounts[key]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Invoke runs ins. signatures are COSE_Sign1 messages produced by Sign; an
// account is presented as a signer only when its meta asks for it and one of
// the signatures is by that account.
func (h *Host) Invoke(ctx context.Context, ins instruction.Instruction, signatures ...[]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	invocationID := uuid.New()

	digest := Digest(ins)
	signed := map[identity.ID]bool{}
	for _, sig := range signatures {
		signerID, err := verify(sig, digest)
		if err != nil {
			return err
		}
		signed[signerID] = true
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	program, ok := h.programs[ins.ProgramID]
	if !ok {
		return fault.Wrapf(fault.ErrIncorrectProgramID, "no program %s", ins.ProgramID)
	}

	// the same key may appear at several positions; all of them share one copy
	working := map[identity.ID]*account.Info{}
	accts := make([]*account.Info, 0, len(ins.Accounts))
	for i, m := range ins.Accounts {
		a, ok := working[m.Key]
		if !ok {
			registered, ok := h.accounts[m.Key]
			if !ok {
				return fault.Wrapf(fault.ErrNotEnoughAccountKeys, "account %d (%s) is not registered", i, m.Key)
			}
			a = registered.Clone()
			working[m.Key] = a
		}
		a.Signer = a.Signer || (m.Signer && signed[m.Key])
		a.Writable = a.Writable || m.Writable
		accts = append(accts, a)
	}

	begun := make([]Participant, 0, len(h.opts.Participants))
	abort := func() {
		for _, p := range begun {
			if err := p.Abort(); err != nil {
				h.Log.Infof("invocation %s: abort participant: %v", invocationID, err)
			}
		}
	}
	for _, p := range h.opts.Participants {
		if err := p.Begin(); err != nil {
			abort()
			return err
		}
		begun = append(begun, p)
	}

	h.Log.Debugf("invocation %s: program %s, %d accounts", invocationID, ins.ProgramID, len(accts))
	err := program.Process(accts, ins.Data)
	if err == nil {
		err = h.checkWrites(working)
	}
	if err == nil {
		err = h.persist(ctx, ins.Accounts, working)
	}
	if err != nil {
		abort()
		if code, ok := fault.CodeOf(err); ok {
			h.Log.Infof("invocation %s: failed with code %d (%s): %v", invocationID, code, code, err)
		} else {
			h.Log.Infof("invocation %s: failed: %v", invocationID, err)
		}
		return err
	}

	for key, a := range working {
		a.Signer, a.Writable = false, false
		h.accounts[key] = a
	}
	for _, p := range begun {
		if cerr := p.Commit(); cerr != nil {
			return fmt.Errorf("invocation %s: commit participant: %w", invocationID, cerr)
		}
	}
	h.Log.Debugf("invocation %s: committed", invocationID)
	return nil
}

func (h *Host) checkWrites(working map[identity.ID]*account.Info) error {
	for key, a := range working {
		prev := h.accounts[key]
		if len(a.Data) != len(prev.Data) {
			return fmt.Errorf("%w: %s", ErrResized, key)
		}
		if a.Writable {
			continue
		}
		if !bytes.Equal(a.Data, prev.Data) || a.Balance != prev.Balance || a.Owner != prev.Owner {
			return fmt.Errorf("%w: %s", ErrReadOnlyModified, key)
		}
	}
	return nil
}

func (h *Host) persist(ctx context.Context, metas []account.Meta, working map[identity.ID]*account.Info) error {
	if h.opts.Committer == nil {
		return nil
	}
	done := make(map[identity.ID]bool, len(working))
	for _, m := range metas {
		if done[m.Key] {
			continue
		}
		done[m.Key] = true
		a := working[m.Key]
		prev := h.accounts[m.Key]
		if bytes.Equal(a.Data, prev.Data) && a.Balance == prev.Balance && a.Owner == prev.Owner {
			continue
		}
		if err := h.opts.Committer.Commit(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
