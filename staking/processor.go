// Package staking implements the Initialize, Deposit and Withdraw transitions
// of the staking registry.
//
// Every transition works directly on account buffers supplied by the host.
// Nothing is undone on failure: the host is expected to discard all buffer
// mutations of a failed invocation. For that reason the custody side effect
// of a transition always happens before the stake list is modified.
package staking

import (
	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/authority"
	"github.com/forestrie/go-nftstaking/custody"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/registry"
	"github.com/forestrie/go-nftstaking/stakelist"
)

// Custody moves and closes token holdings on behalf of the lifecycle.
type Custody interface {
	Inspect(holdingID identity.ID) (custody.Holding, error)
	ReassignAuthority(holdingID, newAuthority, currentAuthority identity.ID) error
	Transfer(holdingID, destinationID identity.ID, c authority.Capability, amount uint64) error
	Close(holdingID, destinationID identity.ID, c authority.Capability) error
}

type Processor struct {
	Cfg     Config
	Log     logger.Logger
	Custody Custody
}

func NewProcessor(cfg Config, log logger.Logger, custody Custody, opts ...Option) *Processor {
	for _, o := range opts {
		o(&cfg)
	}
	return &Processor{
		Cfg:     cfg.withDefaults(),
		Log:     log,
		Custody: custody,
	}
}

// InitializeAccounts are the accounts of an Initialize request.
type InitializeAccounts struct {
	Registry  *account.Info
	StakeList *account.Info
	Manager   *account.Info
}

// DepositAccounts are the accounts of a Deposit request.
type DepositAccounts struct {
	Depositor *account.Info
	Token     *account.Info
	Holding   *account.Info
	Registry  *account.Info
	StakeList *account.Info
}

// WithdrawAccounts are the accounts of a Withdraw request.
type WithdrawAccounts struct {
	Withdrawer *account.Info
	Token      *account.Info
	Registry   *account.Info
	StakeList  *account.Info
	Holding    *account.Info
}

func (p *Processor) checkOwned(accts ...*account.Info) error {
	for _, a := range accts {
		if a.Owner != p.Cfg.ProgramID {
			return fault.Wrapf(fault.ErrIncorrectProgramID,
				"%s is owned by %s", a.Key, a.Owner)
		}
	}
	return nil
}

// Authority derives the staking authority for ownerID and tokenID.
func (p *Processor) Authority(ownerID, tokenID identity.ID) (authority.Capability, error) {
	return authority.Derive(p.Cfg.ProgramID, p.Cfg.DomainTag, ownerID, tokenID)
}

// openBound decodes the registry, checks it is bound to the supplied stake
// list and opens the list.
func (p *Processor) openBound(regAcct, listAcct *account.Info) (registry.Registry, *stakelist.Store, error) {
	if err := p.checkOwned(regAcct, listAcct); err != nil {
		return registry.Registry{}, nil, err
	}
	reg, err := registry.Decode(regAcct.Data)
	if err != nil {
		return registry.Registry{}, nil, err
	}
	if !reg.Initialized {
		return registry.Registry{}, nil, fault.Wrapf(fault.ErrUninitializedAccount,
			"registry %s", regAcct.Key)
	}
	if err = reg.CheckStore(listAcct.Key); err != nil {
		return registry.Registry{}, nil, err
	}
	store, err := stakelist.Open(listAcct.Data)
	if err != nil {
		return registry.Registry{}, nil, err
	}
	return reg, store, nil
}

func syncCount(regAcct *account.Info, reg registry.Registry, store *stakelist.Store) error {
	reg.StakedCount = uint16(store.Len())
	return registry.Encode(regAcct.Data, reg)
}

// Initialize binds the registry to the stake list and resets the stake list
// to empty with the configured capacity.
func (p *Processor) Initialize(a InitializeAccounts) error {
	p.Log.Infof("Instruction: Initialize")

	if !a.Manager.Signer {
		return fault.Wrapf(fault.ErrSignatureMissing, "manager %s", a.Manager.Key)
	}
	reg, err := registry.Initialize(a.Registry.Key, a.Manager.Key, a.StakeList.Key)
	if err != nil {
		return err
	}
	if err = p.checkOwned(a.Registry, a.StakeList); err != nil {
		return err
	}
	for _, acct := range []*account.Info{a.Registry, a.StakeList} {
		if !p.Cfg.Rent.IsExempt(acct.Balance, len(acct.Data)) {
			return fault.Wrapf(fault.ErrNotRentExempt, "%s has %d, needs %d",
				acct.Key, acct.Balance, p.Cfg.Rent.MinimumBalance(len(acct.Data)))
		}
	}
	if len(a.Registry.Data) < registry.Bytes {
		return fault.Wrapf(fault.ErrBufferTooSmall,
			"registry needs %d bytes, got %d", registry.Bytes, len(a.Registry.Data))
	}

	if prev, err := stakelist.DecodeHeader(a.StakeList.Data); err == nil && prev.Initialized && prev.Count > 0 {
		p.Log.Infof("re-initializing stake list %s: discarding %d records", a.StakeList.Key, prev.Count)
	}
	if _, err = stakelist.Init(a.StakeList.Data, p.Cfg.MaxItems); err != nil {
		return err
	}
	return registry.Encode(a.Registry.Data, reg)
}

// Deposit stakes the holding: authority over it passes to the derived staking
// authority, then a record is appended with stake time ts. The holding must be
// for the supplied token. amount is carried by the request but not checked
// against the holding balance.
func (p *Processor) Deposit(a DepositAccounts, amount uint64, ts int64) error {
	p.Log.Infof("Instruction: DepositNFT")

	if !a.Depositor.Signer {
		return fault.Wrapf(fault.ErrSignatureMissing, "depositor %s", a.Depositor.Key)
	}
	reg, store, err := p.openBound(a.Registry, a.StakeList)
	if err != nil {
		return err
	}
	if store.Len() >= store.Cap() {
		return fault.Wrapf(fault.ErrCapacityExceeded, "count=%d, capacity=%d", store.Len(), store.Cap())
	}

	h, err := p.Custody.Inspect(a.Holding.Key)
	if err != nil {
		return err
	}
	if h.Token != a.Token.Key {
		return fault.Wrapf(fault.ErrExpectedAccount,
			"holding %s is for token %s, not %s", a.Holding.Key, h.Token, a.Token.Key)
	}
	p.Log.Debugf("holding %s: balance %d, requested %d", a.Holding.Key, h.Amount, amount)

	c, err := p.Authority(a.Depositor.Key, a.Token.Key)
	if err != nil {
		return err
	}
	p.Log.Debugf("staking authority %s (nonce %d)", c.ID, c.Nonce)
	if err = p.Custody.ReassignAuthority(a.Holding.Key, c.ID, a.Depositor.Key); err != nil {
		return err
	}

	if err = store.Push(stakelist.Record{
		OwnerID:   a.Depositor.Key,
		TokenID:   a.Token.Key,
		HolderID:  a.Holding.Key,
		StakeTime: ts,
	}); err != nil {
		return err
	}
	return syncCount(a.Registry, reg, store)
}

// Withdraw returns the staked holding's balance to its owner, closes the
// holding and removes every record held by it.
func (p *Processor) Withdraw(a WithdrawAccounts) error {
	p.Log.Infof("Instruction: WithdrawNFT")

	if !a.Withdrawer.Signer {
		return fault.Wrapf(fault.ErrSignatureMissing, "withdrawer %s", a.Withdrawer.Key)
	}
	reg, store, err := p.openBound(a.Registry, a.StakeList)
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		return fault.Wrapf(fault.ErrCapacityExceeded, "stake list %s is empty", a.StakeList.Key)
	}

	v, ok := store.FindByKeys(a.Withdrawer.Key, a.Token.Key)
	if !ok {
		return fault.Wrapf(fault.ErrStakedNFTNotFound, "owner %s, token %s", a.Withdrawer.Key, a.Token.Key)
	}
	holder := v.Holder()
	if holder != a.Holding.Key {
		return fault.Wrapf(fault.ErrStakedNFTNotFound,
			"staked in %s, request names %s", holder, a.Holding.Key)
	}

	h, err := p.Custody.Inspect(a.Holding.Key)
	if err != nil {
		return err
	}
	c, err := p.Authority(a.Withdrawer.Key, a.Token.Key)
	if err != nil {
		return err
	}
	if err = p.Custody.Transfer(a.Holding.Key, a.Withdrawer.Key, c, h.Amount); err != nil {
		return err
	}
	if err = p.Custody.Close(a.Holding.Key, a.Withdrawer.Key, c); err != nil {
		return err
	}

	before := store.Len()
	after := store.Retain(stakelist.HolderDiffers, holder[:])
	p.Log.Debugf("removed %d records held by %s", before-after, holder)
	return syncCount(a.Registry, reg, store)
}
