package staking

import (
	"time"

	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/rent"
	"github.com/forestrie/go-nftstaking/stakelist"
)

// DefaultDomainTag is the leading seed of every staking authority.
const DefaultDomainTag = "transient"

// Config for a Processor. Zero valued fields take their defaults in
// NewProcessor.
type Config struct {
	// ProgramID is the identity that must own the registry and stake list
	// accounts, and under which staking authorities are derived.
	ProgramID identity.ID
	// MaxItems is the capacity written by Initialize.
	MaxItems uint16
	// DomainTag seeds authority derivation.
	DomainTag []byte
	// Clock supplies the stake time when requests arrive through Process.
	Clock func() int64
	// Rent is the minimum balance rule Initialize enforces.
	Rent rent.Rent
	// DisableRent skips the rent exemption check.
	DisableRent bool
}

// DefaultConfig returns the configuration used for programID when no options
// are supplied.
func DefaultConfig(programID identity.ID) Config {
	return Config{
		ProgramID: programID,
		MaxItems:  stakelist.MaxCapacity,
		DomainTag: []byte(DefaultDomainTag),
		Clock:     func() int64 { return time.Now().Unix() },
		Rent:      rent.Default(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.ProgramID)
	if c.MaxItems == 0 {
		c.MaxItems = d.MaxItems
	}
	if len(c.DomainTag) == 0 {
		c.DomainTag = d.DomainTag
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	switch {
	case c.DisableRent:
		c.Rent = rent.Free()
	case c.Rent == (rent.Rent{}):
		c.Rent = d.Rent
	}
	return c
}

// Option is a generic option type. Implementations type assert to their
// options target and ignore options that do not apply.
type Option func(any)

func WithMaxItems(n uint16) Option {
	return func(opts any) {
		if c, ok := opts.(*Config); ok {
			c.MaxItems = n
		}
	}
}

func WithDomainTag(tag string) Option {
	return func(opts any) {
		if c, ok := opts.(*Config); ok {
			c.DomainTag = []byte(tag)
		}
	}
}

// WithClock sets the source of stake times for Process.
func WithClock(now func() int64) Option {
	return func(opts any) {
		if c, ok := opts.(*Config); ok {
			c.Clock = now
		}
	}
}

// WithRent replaces the rent parameters used by Initialize. rent.Free()
// disables the exemption check.
func WithRent(r rent.Rent) Option {
	return func(opts any) {
		if c, ok := opts.(*Config); ok {
			c.Rent = r
			c.DisableRent = r == rent.Free()
		}
	}
}

// WithoutRent disables the rent exemption check.
func WithoutRent() Option {
	return func(opts any) {
		if c, ok := opts.(*Config); ok {
			c.DisableRent = true
		}
	}
}
