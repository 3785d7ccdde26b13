package core

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"kittycore/pkg/domain"
)

const ownershipRuleName = "ownership_consistency"

// OwnershipConsistencyRule keeps the roster index equal to the inverse of the
// owner map: every kitty has one owner, appears once in that owner's roster
// and nowhere else. Transactions are checked only for the kitties and
// accounts their ownership changes name; imports get a full pass.
func OwnershipConsistencyRule() domain.Rule {
	return ownershipConsistencyRule{}
}

type ownershipConsistencyRule struct{}

func (ownershipConsistencyRule) Name() string { return ownershipRuleName }

func (ownershipConsistencyRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if changes == nil {
		return checkAllOwnership(view), nil
	}
	kitties, accounts := ownershipScope(changes)
	if len(kitties) == 0 {
		return domain.Result{}, nil
	}
	return checkOwnership(view, kitties, accounts), nil
}

// ownershipScope collects the kitties and accounts named by ownership changes.
func ownershipScope(changes []domain.Change) (map[KittyID]struct{}, map[AccountID]struct{}) {
	kitties := make(map[KittyID]struct{})
	accounts := make(map[AccountID]struct{})
	for _, change := range changes {
		if change.Entity != domain.EntityOwnership {
			continue
		}
		for _, payload := range []any{change.Before, change.After} {
			if o, ok := payload.(domain.Ownership); ok {
				kitties[o.KittyID] = struct{}{}
				accounts[o.Owner] = struct{}{}
			}
		}
	}
	return kitties, accounts
}

func checkOwnership(view domain.RuleView, kitties map[KittyID]struct{}, accounts map[AccountID]struct{}) domain.Result {
	res := domain.Result{}
	owners := make(map[KittyID]AccountID, len(kitties))
	for _, id := range slices.Sorted(maps.Keys(kitties)) {
		if owner, ok := ownerOf(view, id, &res); ok {
			owners[id] = owner
			accounts[owner] = struct{}{}
		}
	}
	rosters := make(map[AccountID]map[KittyID]struct{}, len(accounts))
	for _, account := range slices.Sorted(maps.Keys(accounts)) {
		if account != "" {
			rosters[account] = checkRoster(view, account, &res)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(owners)) {
		checkListed(id, owners[id], rosters, &res)
	}
	return res
}

func checkAllOwnership(view domain.RuleView) domain.Result {
	res := domain.Result{}
	rosters := make(map[AccountID]map[KittyID]struct{})
	for _, account := range view.ListRosterAccounts() {
		rosters[account] = checkRoster(view, account, &res)
	}
	for _, kitty := range view.ListKitties() {
		if owner, ok := ownerOf(view, kitty.ID, &res); ok {
			checkListed(kitty.ID, owner, rosters, &res)
		}
	}
	return res
}

func ownerOf(view domain.RuleView, id KittyID, res *domain.Result) (AccountID, bool) {
	owner, ok := view.OwnerOf(id)
	switch {
	case !ok:
		res.Violations = append(res.Violations, ownershipViolation(id, fmt.Sprintf("kitty %d has no owner", id)))
		return "", false
	case owner == "":
		res.Violations = append(res.Violations, ownershipViolation(id, fmt.Sprintf("kitty %d has an empty owner", id)))
		return "", false
	}
	return owner, true
}

// checkRoster flags duplicates and foreign kitties in one roster and returns
// its members.
func checkRoster(view domain.RuleView, account AccountID, res *domain.Result) map[KittyID]struct{} {
	roster := view.KittiesOf(account)
	seen := make(map[KittyID]struct{}, len(roster))
	for _, id := range roster {
		if _, dup := seen[id]; dup {
			res.Violations = append(res.Violations, ownershipViolation(id, fmt.Sprintf("kitty %d listed twice for %s", id, account)))
			continue
		}
		seen[id] = struct{}{}
		owner, ok := view.OwnerOf(id)
		if !ok || owner != account {
			res.Violations = append(res.Violations, ownershipViolation(id, fmt.Sprintf("kitty %d listed for %s but owned by %q", id, account, owner)))
		}
	}
	return seen
}

func checkListed(id KittyID, owner AccountID, rosters map[AccountID]map[KittyID]struct{}, res *domain.Result) {
	if _, ok := rosters[owner][id]; !ok {
		res.Violations = append(res.Violations, ownershipViolation(id, fmt.Sprintf("kitty %d missing from roster of %s", id, owner)))
	}
}

func ownershipViolation(id KittyID, message string) domain.Violation {
	return domain.Violation{
		Rule:     ownershipRuleName,
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityOwnership,
		EntityID: strconv.FormatUint(uint64(id), 10),
	}
}
