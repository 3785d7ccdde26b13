package memory

import (
	"fmt"
	"slices"

	"kittycore/pkg/domain"
)

// NextKittyID returns the unassigned counter value. The counter only moves
// when InsertKitty persists a kitty, so a failed call wastes no identifier.
func (tx *transaction) NextKittyID() (KittyID, error) {
	if tx.state.count == domain.MaxKittyID {
		return 0, domain.ErrCountOverflow
	}
	return tx.state.count, nil
}

// NextNonce returns the current derivation index and advances it.
func (tx *transaction) NextNonce() uint64 {
	n := tx.state.nonce
	tx.state.nonce++
	return n
}

// InsertKitty stores the kitty, assigns its owner and appends it to the
// owner's roster. The counter becomes id+1. An empty owner is left for the
// ownership rule to block at commit.
func (tx *transaction) InsertKitty(owner AccountID, kitty Kitty) {
	tx.state.kitties[kitty.ID] = kitty
	tx.state.owners[kitty.ID] = owner
	tx.state.rosters[owner] = append(tx.state.rosters[owner], kitty.ID)
	tx.state.count = kitty.ID + 1
	tx.recordChange(Change{Entity: domain.EntityKitty, Action: domain.ActionCreate, After: kitty})
	tx.recordChange(Change{
		Entity: domain.EntityOwnership,
		Action: domain.ActionCreate,
		After:  domain.Ownership{KittyID: kitty.ID, Owner: owner},
	})
}

// TransferKitty moves a kitty between rosters after checking ownership.
func (tx *transaction) TransferKitty(id KittyID, from, to AccountID) error {
	if to == "" {
		return domain.ErrInvalidAccount
	}
	owner, ok := tx.state.owners[id]
	if !ok {
		return fmt.Errorf("kitty %d: %w", id, domain.ErrKittyNotFound)
	}
	if owner != from {
		return fmt.Errorf("kitty %d: %w", id, domain.ErrNotOwner)
	}
	if from == to {
		return domain.ErrTransferToSelf
	}
	tx.state.owners[id] = to
	roster := slices.DeleteFunc(tx.state.rosters[from], func(k KittyID) bool { return k == id })
	if len(roster) == 0 {
		delete(tx.state.rosters, from)
	} else {
		tx.state.rosters[from] = roster
	}
	tx.state.rosters[to] = append(tx.state.rosters[to], id)
	tx.recordChange(Change{
		Entity: domain.EntityOwnership,
		Action: domain.ActionUpdate,
		Before: domain.Ownership{KittyID: id, Owner: from},
		After:  domain.Ownership{KittyID: id, Owner: to},
	})
	return nil
}
