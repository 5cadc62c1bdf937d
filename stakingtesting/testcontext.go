package stakingtesting

import (
	"crypto/sha256"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/custody"
	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/registry"
	"github.com/forestrie/go-nftstaking/rent"
	"github.com/forestrie/go-nftstaking/stakelist"
)

const (
	DefaultCapacity = 8
	// DefaultReserve is the native value backing each minted holding.
	DefaultReserve = 2039280
)

type TestConfig struct {
	TestLabelPrefix string
	// ProgramID defaults to ID(TestLabelPrefix + "/program").
	ProgramID identity.ID
}

type TestContext struct {
	Log       logger.Logger
	T         *testing.T
	ProgramID identity.ID
	Ledger    *custody.Ledger
	Custody   *RecordingCustody
	Rent      rent.Rent
	label     string
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T:         t,
		ProgramID: cfg.ProgramID,
		Rent:      rent.Default(),
		label:     cfg.TestLabelPrefix,
	}
	logger.New("NOOP")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)

	if c.ProgramID.IsZero() {
		c.ProgramID = ID(cfg.TestLabelPrefix + "/program")
	}
	c.Ledger = custody.NewLedger(c.ProgramID)
	c.Custody = &RecordingCustody{Inner: c.Ledger}
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// ID returns a deterministic identity for label.
func ID(label string) identity.ID {
	return identity.ID(sha256.Sum256([]byte(label)))
}

func (c *TestContext) id(label string) identity.ID {
	return ID(c.label + "/" + label)
}

// NewRegistryAccount returns a rent exempt, program owned registry account.
func (c *TestContext) NewRegistryAccount(label string) *account.Info {
	a := account.New(c.id(label), c.ProgramID, c.Rent.MinimumBalance(registry.Bytes), registry.Bytes)
	a.Writable = true
	return a
}

// NewStakeListAccount returns a rent exempt, program owned account sized for
// capacity records.
func (c *TestContext) NewStakeListAccount(label string, capacity uint16) *account.Info {
	size := int(stakelist.BufferBytes(capacity))
	a := account.New(c.id(label), c.ProgramID, c.Rent.MinimumBalance(size), size)
	a.Writable = true
	return a
}

// NewSigner returns a wallet account that has signed the request.
func (c *TestContext) NewSigner(label string) *account.Info {
	a := account.New(c.id(label), identity.Zero, 0, 0)
	a.Signer = true
	return a
}

func (c *TestContext) NewToken(label string) *account.Info {
	return account.New(c.id(label), identity.Zero, 0, 0)
}

// MintHolding creates a ledger holding of amount token units controlled by
// owner and returns its account.
func (c *TestContext) MintHolding(label string, owner, token *account.Info, amount uint64) *account.Info {
	a := account.New(c.id(label), identity.Zero, 0, 0)
	a.Writable = true
	err := c.Ledger.Create(a.Key, custody.Holding{
		Token:     token.Key,
		Authority: owner.Key,
		Amount:    amount,
		Reserve:   DefaultReserve,
	})
	require.NoError(c.T, err)
	return a
}
