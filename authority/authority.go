package authority

/*

# Deterministic delegated authorities

An authority is an identity computed from a fixed seed tuple and the program
identity:

	sha256( seed_0 || ... || seed_n || programID || "ProgramDerivedAddress" )

The digest is only accepted when it is NOT a valid ed25519 point encoding.
Such an identity has no private key, so the only way to act as it is to present
the seeds (plus the bump nonce that pushed the digest off the curve) to a
collaborator that can recompute it. That is what Capability carries.

*/

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/forestrie/go-nftstaking/identity"
)

const (
	// MaxSeeds is the maximum number of seeds, including the nonce seed.
	MaxSeeds = 16
	// MaxSeedBytes is the maximum width of a single seed.
	MaxSeedBytes = 32

	derivationMarker = "ProgramDerivedAddress"
)

var (
	ErrOnCurve        = errors.New("authority: derived identity is on the ed25519 curve")
	ErrMaxSeedLength  = errors.New("authority: seed too long")
	ErrTooManySeeds   = errors.New("authority: too many seeds")
	ErrNoViableNonce  = errors.New("authority: no nonce produced an off-curve identity")
	ErrBadCapability  = errors.New("authority: capability does not verify")
	ErrWrongAuthority = errors.New("authority: capability is for a different identity")
)

// IsOnCurve reports whether b is a valid ed25519 point encoding.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// Create computes the authority for exactly the given seeds.
func Create(programID identity.ID, seeds ...[]byte) (identity.ID, error) {
	if len(seeds) > MaxSeeds {
		return identity.ID{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedBytes {
			return identity.ID{}, fmt.Errorf("%w: %d bytes", ErrMaxSeedLength, len(s))
		}
		_, _ = h.Write(s)
	}
	_, _ = h.Write(programID[:])
	_, _ = h.Write([]byte(derivationMarker))

	var id identity.ID
	copy(id[:], h.Sum(nil))
	if IsOnCurve(id[:]) {
		return identity.ID{}, ErrOnCurve
	}
	return id, nil
}

// Find searches nonces from 255 down to 0 and returns the first off-curve
// authority for seeds || [nonce].
func Find(programID identity.ID, seeds ...[]byte) (identity.ID, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return identity.ID{}, 0, ErrTooManySeeds
	}
	withNonce := make([][]byte, len(seeds)+1)
	copy(withNonce, seeds)
	for n := 255; n >= 0; n-- {
		withNonce[len(seeds)] = []byte{uint8(n)}
		id, err := Create(programID, withNonce...)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return identity.ID{}, 0, err
		}
		return id, uint8(n), nil
	}
	return identity.ID{}, 0, ErrNoViableNonce
}
