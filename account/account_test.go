package account

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forestrie/go-nftstaking/identity"
)

func TestMeta(t *testing.T) {
	key := identity.ID{1}
	assert.Equal(t, Meta{Key: key, Signer: true, Writable: true}, Writable(key, true))
	assert.Equal(t, Meta{Key: key}, ReadOnly(key, false))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(identity.ID{1}, identity.ID{2}, 5, 3)
	c := a.Clone()
	c.Data[0] = 9
	c.Balance = 6
	assert.Equal(t, []byte{0, 0, 0}, a.Data)
	assert.Equal(t, uint64(5), a.Balance)
}
