package core

import "kittycore/pkg/domain"

// Aliases re-export the domain vocabulary so callers of the service need a
// single import.
type (
	AccountID       = domain.AccountID
	KittyID         = domain.KittyID
	Kitty           = domain.Kitty
	DNA             = domain.DNA
	Parents         = domain.Parents
	Balance         = domain.Balance
	AccountBalance  = domain.AccountBalance
	Change          = domain.Change
	Result          = domain.Result
	Violation       = domain.Violation
	Rule            = domain.Rule
	RulesEngine     = domain.RulesEngine
	Snapshot        = domain.Snapshot
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
	Randomness      = domain.Randomness
)
