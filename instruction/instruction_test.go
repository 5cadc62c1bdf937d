package instruction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/identity"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Data
		err   error
	}{
		{"initialize", []byte{0}, Data{Tag: TagInitialize}, nil},
		{"withdraw", []byte{2}, Data{Tag: TagWithdraw}, nil},
		{"deposit", []byte{1, 1, 0, 0, 0, 0, 0, 0, 0}, Data{Tag: TagDeposit, Amount: 1}, nil},
		{"deposit le", []byte{1, 0x02, 0x01, 0, 0, 0, 0, 0, 0x80}, Data{Tag: TagDeposit, Amount: 0x8000000000000102}, nil},
		{"deposit trailing", []byte{1, 5, 0, 0, 0, 0, 0, 0, 0, 9}, Data{Tag: TagDeposit, Amount: 5}, nil},
		{"empty", nil, Data{}, fault.ErrInvalidInstruction},
		{"truncated deposit", []byte{1, 1, 0, 0}, Data{}, fault.ErrInvalidInstruction},
		{"unknown tag", []byte{3}, Data{}, fault.ErrInvalidInstruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshalTags(t *testing.T) {
	b, err := Data{Tag: TagWithdraw}.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, b)

	b, err = Data{Tag: TagDeposit, Amount: 7}.MarshalBinary()
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, Data{Tag: TagDeposit, Amount: 7}, got)

	_, err = Data{Tag: 9}.MarshalBinary()
	require.ErrorIs(t, err, fault.ErrInvalidInstruction)
}

func TestBuilders(t *testing.T) {
	program, owner, token, holding, reg, list := identity.ID{1}, identity.ID{2}, identity.ID{3}, identity.ID{4}, identity.ID{5}, identity.ID{6}

	ins := Deposit(program, owner, token, holding, reg, list, 1)
	require.Len(t, ins.Accounts, 5)
	assert.True(t, ins.Accounts[0].Signer)
	assert.Equal(t, holding, ins.Accounts[2].Key)
	assert.Equal(t, []byte{1, 1, 0, 0, 0, 0, 0, 0, 0}, ins.Data)

	ins = Withdraw(program, owner, token, reg, list, holding)
	require.Len(t, ins.Accounts, 5)
	assert.Equal(t, holding, ins.Accounts[4].Key)
	assert.Equal(t, []byte{2}, ins.Data)

	ins = Initialize(program, reg, list, owner)
	require.Len(t, ins.Accounts, 3)
	assert.True(t, ins.Accounts[2].Signer)
	assert.False(t, ins.Accounts[0].Signer)
	assert.Equal(t, "Initialize", TagInitialize.String())
}
