package custody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-nftstaking/authority"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

var (
	programID = identity.ID{0xaa}
	owner     = identity.ID{1}
	token     = identity.ID{2}
	holdingID = identity.ID{3}
	tag       = []byte("transient")
)

func stakedLedger(t *testing.T) (*Ledger, authority.Capability) {
	t.Helper()
	l := NewLedger(programID)
	require.NoError(t, l.Create(holdingID, Holding{Token: token, Authority: owner, Amount: 1, Reserve: 2039280}))

	c, err := authority.Derive(programID, tag, owner, token)
	require.NoError(t, err)
	require.NoError(t, l.ReassignAuthority(holdingID, c.ID, owner))
	return l, c
}

func TestReassignAuthority(t *testing.T) {
	l := NewLedger(programID)
	require.NoError(t, l.Create(holdingID, Holding{Token: token, Authority: owner, Amount: 1}))

	err := l.ReassignAuthority(holdingID, identity.ID{9}, identity.ID{8})
	require.ErrorIs(t, err, ErrUnauthorized)

	err = l.ReassignAuthority(identity.ID{7}, identity.ID{9}, owner)
	require.ErrorIs(t, err, fault.ErrExpectedAccount)

	require.NoError(t, l.ReassignAuthority(holdingID, identity.ID{9}, owner))
	h, err := l.Inspect(holdingID)
	require.NoError(t, err)
	assert.Equal(t, identity.ID{9}, h.Authority)

	require.ErrorIs(t, l.Create(holdingID, Holding{}), ErrHoldingExists)
}

func TestTransferAndClose(t *testing.T) {
	l, c := stakedLedger(t)

	require.NoError(t, l.Transfer(holdingID, owner, c, 1))

	returned, err := l.Inspect(Associated(owner, token))
	require.NoError(t, err)
	assert.Equal(t, Holding{Token: token, Authority: owner, Amount: 1}, returned)

	require.NoError(t, l.Close(holdingID, owner, c))
	_, err = l.Inspect(holdingID)
	require.ErrorIs(t, err, fault.ErrExpectedAccount)
	assert.Equal(t, uint64(2039280), l.NativeBalance(owner))
}

func TestTransferRejectsForeignCapability(t *testing.T) {
	l, _ := stakedLedger(t)

	other, err := authority.Derive(programID, tag, owner, identity.ID{0x42})
	require.NoError(t, err)
	require.ErrorIs(t, l.Transfer(holdingID, owner, other, 1), ErrUnauthorized)

	foreign, err := authority.Derive(identity.ID{0xbb}, tag, owner, token)
	require.NoError(t, err)
	require.ErrorIs(t, l.Transfer(holdingID, owner, foreign, 1), ErrUnauthorized)
	require.ErrorIs(t, l.Close(holdingID, owner, authority.Capability{}), ErrUnauthorized)
}

func TestTransferChecks(t *testing.T) {
	l, c := stakedLedger(t)
	require.ErrorIs(t, l.Transfer(holdingID, owner, c, 2), ErrInsufficientFunds)
	require.ErrorIs(t, l.Close(holdingID, owner, c), ErrNonZeroBalance)

	other := identity.ID{0x50}
	require.NoError(t, l.Create(other, Holding{Token: identity.ID{0x51}, Authority: owner}))
	require.ErrorIs(t, l.Transfer(holdingID, other, c, 1), ErrTokenMismatch)
}

func TestAbortRestores(t *testing.T) {
	l, c := stakedLedger(t)
	before, err := l.Inspect(holdingID)
	require.NoError(t, err)

	require.NoError(t, l.Begin())
	require.NoError(t, l.Transfer(holdingID, owner, c, 1))
	require.NoError(t, l.Close(holdingID, owner, c))
	require.NoError(t, l.Abort())

	after, err := l.Inspect(holdingID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, l.NativeBalance(owner))
	_, err = l.Inspect(Associated(owner, token))
	require.Error(t, err)

	require.NoError(t, l.Begin())
	require.NoError(t, l.Transfer(holdingID, owner, c, 1))
	require.NoError(t, l.Commit())
	h, err := l.Inspect(holdingID)
	require.NoError(t, err)
	assert.Zero(t, h.Amount)

	require.ErrorIs(t, l.Commit(), ErrNoTransaction)
	require.ErrorIs(t, l.Abort(), ErrNoTransaction)
}
