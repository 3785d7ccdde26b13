package domain

import "errors"

// Errors surfaced by kitty operations. Callers match them with errors.Is.
var (
	// ErrCountOverflow means the identifier space is exhausted.
	ErrCountOverflow = errors.New("kitty count overflow")
	// ErrKittyNotFound means a referenced kitty has no record.
	ErrKittyNotFound = errors.New("kitty not found")
	// ErrNotOwner means the caller does not own the referenced kitty.
	ErrNotOwner = errors.New("not kitty owner")
	// ErrTransferToSelf rejects transfers whose source and target match.
	ErrTransferToSelf = errors.New("transfer to self")
	// ErrRequireDifferentParent rejects breeding a kitty with itself.
	ErrRequireDifferentParent = errors.New("require different parent")
	// ErrInsufficientStake means the creation stake could not be reserved.
	ErrInsufficientStake = errors.New("insufficient stake")
	// ErrInsufficientFunds is returned by balance reservation.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAccount rejects an empty account identifier.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrBalanceOverflow rejects deposits that would wrap an account total.
	ErrBalanceOverflow = errors.New("balance overflow")
)
