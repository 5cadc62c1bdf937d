package instruction

import (
	"encoding/binary"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

// Tag selects the requested transition.
type Tag uint8

const (
	TagInitialize Tag = 0
	TagDeposit    Tag = 1
	TagWithdraw   Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagInitialize:
		return "Initialize"
	case TagDeposit:
		return "DepositNFT"
	case TagWithdraw:
		return "WithdrawNFT"
	default:
		return "Unknown"
	}
}

const amountBytes = 8

// Data is the decoded request payload.
type Data struct {
	Tag Tag
	// Amount is only meaningful for TagDeposit.
	Amount uint64
}

// Decode parses a request payload: a one byte tag, followed for Deposit by a
// little-endian u64 amount. Trailing bytes are ignored.
func Decode(input []byte) (Data, error) {
	if len(input) == 0 {
		return Data{}, fault.Wrapf(fault.ErrInvalidInstruction, "empty input")
	}
	tag, rest := Tag(input[0]), input[1:]
	switch tag {
	case TagInitialize, TagWithdraw:
		return Data{Tag: tag}, nil
	case TagDeposit:
		if len(rest) < amountBytes {
			return Data{}, fault.Wrapf(fault.ErrInvalidInstruction, "deposit amount truncated to %d bytes", len(rest))
		}
		return Data{Tag: tag, Amount: binary.LittleEndian.Uint64(rest[:amountBytes])}, nil
	default:
		return Data{}, fault.Wrapf(fault.ErrInvalidInstruction, "unknown tag %d", uint8(tag))
	}
}

// MarshalBinary encodes d in the request wire format.
func (d Data) MarshalBinary() ([]byte, error) {
	switch d.Tag {
	case TagInitialize, TagWithdraw:
		return []byte{byte(d.Tag)}, nil
	case TagDeposit:
		b := make([]byte, 1+amountBytes)
		b[0] = byte(TagDeposit)
		binary.LittleEndian.PutUint64(b[1:], d.Amount)
		return b, nil
	default:
		return nil, fault.Wrapf(fault.ErrInvalidInstruction, "unknown tag %d", uint8(d.Tag))
	}
}

// Instruction is a complete request addressed to a program.
type Instruction struct {
	ProgramID identity.ID
	Accounts  []account.Meta
	Data      []byte
}

func mustMarshal(d Data) []byte {
	b, err := d.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return b
}

// Initialize builds an Initialize request. Accounts:
//
//	0. [writable] registry
//	1. [writable] stake list
//	2. [signer]   manager
func Initialize(programID, registryID, stakeListID, managerID identity.ID) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []account.Meta{
			account.Writable(registryID, false),
			account.Writable(stakeListID, false),
			account.ReadOnly(managerID, true),
		},
		Data: mustMarshal(Data{Tag: TagInitialize}),
	}
}

// Deposit builds a Deposit request. Accounts:
//
//	0. [signer]   depositor (owner)
//	1. []         token
//	2. [writable] holding being staked
//	3. [writable] registry
//	4. [writable] stake list
func Deposit(programID, ownerID, tokenID, holdingID, registryID, stakeListID identity.ID, amount uint64) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []account.Meta{
			account.ReadOnly(ownerID, true),
			account.ReadOnly(tokenID, false),
			account.Writable(holdingID, false),
			account.Writable(registryID, false),
			account.Writable(stakeListID, false),
		},
		Data: mustMarshal(Data{Tag: TagDeposit, Amount: amount}),
	}
}

// Withdraw builds a Withdraw request. Accounts:
//
//	0. [signer]   withdrawer (owner)
//	1. []         token
//	2. [writable] registry
//	3. [writable] stake list
//	4. [writable] holding being released
func Withdraw(programID, ownerID, tokenID, registryID, stakeListID, holdingID identity.ID) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts: []account.Meta{
			account.ReadOnly(ownerID, true),
			account.ReadOnly(tokenID, false),
			account.Writable(registryID, false),
			account.Writable(stakeListID, false),
			account.Writable(holdingID, false),
		},
		Data: mustMarshal(Data{Tag: TagWithdraw}),
	}
}
