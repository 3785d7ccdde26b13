package memory

import (
	"fmt"
	"math"

	"kittycore/pkg/domain"
)

// Reserve moves amount from the account's free balance to its reserved
// balance. Reserved funds are never released here.
func (tx *transaction) Reserve(account AccountID, amount Balance) error {
	if account == "" {
		return domain.ErrInvalidAccount
	}
	before := tx.state.accounts[account]
	if before.Free < amount {
		return fmt.Errorf("reserve %d from %q (free %d): %w", amount, account, before.Free, domain.ErrInsufficientFunds)
	}
	after := AccountBalance{Free: before.Free - amount, Reserved: before.Reserved + amount}
	tx.state.accounts[account] = after
	tx.recordChange(accountChange(account, before, after))
	return nil
}

// Deposit credits free balance, refusing amounts that would wrap the total.
func (tx *transaction) Deposit(account AccountID, amount Balance) (AccountBalance, error) {
	if account == "" {
		return AccountBalance{}, domain.ErrInvalidAccount
	}
	before := tx.state.accounts[account]
	if amount > math.MaxUint64-before.Free || before.Free+amount > math.MaxUint64-before.Reserved {
		return before, fmt.Errorf("deposit %d to %q: %w", amount, account, domain.ErrBalanceOverflow)
	}
	after := AccountBalance{Free: before.Free + amount, Reserved: before.Reserved}
	tx.state.accounts[account] = after
	tx.recordChange(accountChange(account, before, after))
	return after, nil
}

func accountChange(account AccountID, before, after AccountBalance) Change {
	action := domain.ActionUpdate
	if before == (AccountBalance{}) {
		action = domain.ActionCreate
	}
	return Change{
		Entity: domain.EntityAccount,
		Action: action,
		Before: domain.AccountEntry{Account: account, Balance: before},
		After:  domain.AccountEntry{Account: account, Balance: after},
	}
}
