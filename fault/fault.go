// Package fault - coded error instances
//
// Provides a single instance of each staking error so callers compare with
// errors.Is, and a numeric code so a host can report the failure identity
// independently of the message text.
package fault

import (
	"errors"
	"fmt"
)

// Code is the numeric failure identity reported to the caller.
type Code uint32

// codes are part of the external contract and must never be renumbered
const (
	CodeAlreadyInUse Code = iota
	CodeSignatureMissing
	CodeInvalidInstruction
	CodeNotRentExempt
	CodeExpectedAmountMismatch
	CodeAmountOverflow
	CodeInvalidStakeList
	CodeStakedNFTNotFound
	CodeExpectedAccount
	CodeCapacityExceeded
	CodeBufferTooSmall
	CodeIncorrectProgramID
	CodeNotEnoughAccountKeys
	CodeUninitializedAccount
)

// Error is a coded, terminal failure of the current operation.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrAlreadyInUse           = &Error{CodeAlreadyInUse, "the account cannot be initialized because it is already being used"}
	ErrSignatureMissing       = &Error{CodeSignatureMissing, "required signature is missing"}
	ErrInvalidInstruction     = &Error{CodeInvalidInstruction, "invalid instruction"}
	ErrNotRentExempt          = &Error{CodeNotRentExempt, "not rent exempt"}
	ErrExpectedAmountMismatch = &Error{CodeExpectedAmountMismatch, "expected amount mismatch"}
	ErrAmountOverflow         = &Error{CodeAmountOverflow, "staking has reached the maximum count"}
	ErrInvalidStakeList       = &Error{CodeInvalidStakeList, "detected mismatching stake list"}
	ErrStakedNFTNotFound      = &Error{CodeStakedNFTNotFound, "stake account for this nft not found in the list"}
	ErrExpectedAccount        = &Error{CodeExpectedAccount, "account data is not a token holding"}
	ErrCapacityExceeded       = &Error{CodeCapacityExceeded, "stake list capacity exceeded"}
	ErrBufferTooSmall         = &Error{CodeBufferTooSmall, "account data too small"}
	ErrIncorrectProgramID     = &Error{CodeIncorrectProgramID, "account not owned by the staking program"}
	ErrNotEnoughAccountKeys   = &Error{CodeNotEnoughAccountKeys, "not enough account keys"}
	ErrUninitializedAccount   = &Error{CodeUninitializedAccount, "account is not initialized"}
)

var all = []*Error{
	ErrAlreadyInUse,
	ErrSignatureMissing,
	ErrInvalidInstruction,
	ErrNotRentExempt,
	ErrExpectedAmountMismatch,
	ErrAmountOverflow,
	ErrInvalidStakeList,
	ErrStakedNFTNotFound,
	ErrExpectedAccount,
	ErrCapacityExceeded,
	ErrBufferTooSmall,
	ErrIncorrectProgramID,
	ErrNotEnoughAccountKeys,
	ErrUninitializedAccount,
}

// FromCode returns the error instance for code, or nil for an unknown code.
func FromCode(code Code) *Error {
	if int(code) >= len(all) {
		return nil
	}
	return all[code]
}

// CodeOf returns the code of the first *Error found in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Code, true
}

// Wrapf decorates e with a formatted detail while keeping errors.Is(err, e).
func Wrapf(e *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func (c Code) String() string {
	if e := FromCode(c); e != nil {
		return e.Message
	}
	return fmt.Sprintf("unknown error code %d", uint32(c))
}
