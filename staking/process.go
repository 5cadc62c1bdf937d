package staking

import (
	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/fault"
	"github.com/forestrie/go-nftstaking/instruction"
)

func need(accts []*account.Info, n int, tag instruction.Tag) error {
	if len(accts) < n {
		return fault.Wrapf(fault.ErrNotEnoughAccountKeys,
			"%s needs %d accounts, got %d", tag, n, len(accts))
	}
	return nil
}

// Process decodes input and runs the requested transition over the
// positional accounts. Stake times come from the configured clock.
func (p *Processor) Process(accts []*account.Info, input []byte) error {
	d, err := instruction.Decode(input)
	if err != nil {
		return err
	}
	switch d.Tag {
	case instruction.TagInitialize:
		if err = need(accts, 3, d.Tag); err != nil {
			return err
		}
		return p.Initialize(InitializeAccounts{
			Registry:  accts[0],
			StakeList: accts[1],
			Manager:   accts[2],
		})
	case instruction.TagDeposit:
		if err = need(accts, 5, d.Tag); err != nil {
			return err
		}
		return p.Deposit(DepositAccounts{
			Depositor: accts[0],
			Token:     accts[1],
			Holding:   accts[2],
			Registry:  accts[3],
			StakeList: accts[4],
		}, d.Amount, p.Cfg.Clock())
	case instruction.TagWithdraw:
		if err = need(accts, 5, d.Tag); err != nil {
			return err
		}
		return p.Withdraw(WithdrawAccounts{
			Withdrawer: accts[0],
			Token:      accts[1],
			Registry:   accts[2],
			StakeList:  accts[3],
			Holding:    accts[4],
		})
	}
	// unreachable, Decode rejects unknown tags
	return fault.Wrapf(fault.ErrInvalidInstruction, "tag %d", d.Tag)
}
