package authority

import (
	"github.com/forestrie/go-nftstaking/identity"
)

// Capability is the value handed to a custody collaborator in place of a
// signature. It is scoped to exactly the seed tuple it was derived from.
type Capability struct {
	ID    identity.ID
	Nonce uint8
	seeds [][]byte
}

// Derive computes the staking authority for (tag, ownerID, tokenID).
func Derive(programID identity.ID, tag []byte, ownerID, tokenID identity.ID) (Capability, error) {
	seeds := [][]byte{
		append([]byte(nil), tag...),
		append([]byte(nil), ownerID[:]...),
		append([]byte(nil), tokenID[:]...),
	}
	id, nonce, err := Find(programID, seeds...)
	if err != nil {
		return Capability{}, err
	}
	return Capability{ID: id, Nonce: nonce, seeds: seeds}, nil
}

// Seeds returns the seed tuple including the trailing nonce seed.
func (c Capability) Seeds() [][]byte {
	out := make([][]byte, 0, len(c.seeds)+1)
	for _, s := range c.seeds {
		out = append(out, append([]byte(nil), s...))
	}
	return append(out, []byte{c.Nonce})
}

// Verify recomputes the authority from the carried seeds and checks it is
// c.ID under programID.
func (c Capability) Verify(programID identity.ID) error {
	if len(c.seeds) == 0 {
		return ErrBadCapability
	}
	id, err := Create(programID, c.Seeds()...)
	if err != nil {
		return err
	}
	if id != c.ID {
		return ErrBadCapability
	}
	return nil
}

// Authorizes verifies c and checks it acts for want.
func (c Capability) Authorizes(programID identity.ID, want identity.ID) error {
	if err := c.Verify(programID); err != nil {
		return err
	}
	if c.ID != want {
		return ErrWrongAuthority
	}
	return nil
}
