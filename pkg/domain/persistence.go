package domain

import "context"

// Randomness is the host's source of unpredictable bytes. The output need not
// be cryptographically secure.
type Randomness interface {
	RandomSeed() [32]byte
}

// Reserver moves an amount from an account's free balance into its reserved
// balance. It returns ErrInsufficientFunds when the free balance is too low.
type Reserver interface {
	Reserve(account AccountID, amount Balance) error
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Nothing written through a Transaction
// is visible to other callers until the enclosing RunInTransaction commits.
type Transaction interface {
	Reserver
	Snapshot() TransactionView

	// NextKittyID returns the next unassigned identifier without consuming it.
	NextKittyID() (KittyID, error)
	// NextNonce returns the per-call derivation index and advances it.
	NextNonce() uint64

	InsertKitty(owner AccountID, kitty Kitty)
	TransferKitty(id KittyID, from, to AccountID) error

	RecordParents(child, father, mother KittyID)
	RecordChild(father, mother, child KittyID)
	RecomputeSiblings(child KittyID)
	RecordPartner(a, b KittyID)

	Deposit(account AccountID, amount Balance) (AccountBalance, error)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(ctx context.Context, snapshot Snapshot) error
}
