package core

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"kittycore/pkg/domain"
)

const lineageRuleName = "lineage_integrity"

// LineageIntegrityRule blocks commits that leave the parent graph
// inconsistent: parents must exist and differ, must predate the child, and
// the child must be listed exactly once under its parent pair.
func LineageIntegrityRule() domain.Rule {
	return lineageIntegrityRule{}
}

type lineageIntegrityRule struct{}

func (lineageIntegrityRule) Name() string { return lineageRuleName }

// Evaluate checks the children touched by changes, or every lineage entry
// when changes is nil (snapshot import).
func (lineageIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, child := range lineageTargets(view, changes) {
		parents, ok := view.ParentsOf(child)
		if !ok {
			continue
		}
		if parents.Father == parents.Mother {
			res.Violations = append(res.Violations, lineageViolation(child, fmt.Sprintf("kitty %d has identical parents %d", child, parents.Father)))
		}
		for _, parent := range []KittyID{parents.Father, parents.Mother} {
			if _, ok := view.FindKitty(parent); !ok {
				res.Violations = append(res.Violations, lineageViolation(child, fmt.Sprintf("kitty %d references missing parent %d", child, parent)))
				continue
			}
			if parent >= child {
				res.Violations = append(res.Violations, lineageViolation(child, fmt.Sprintf("kitty %d is not younger than parent %d", child, parent)))
			}
		}
		listed := 0
		for _, id := range view.ChildrenOf(parents.Father, parents.Mother) {
			if id == child {
				listed++
			}
		}
		if listed != 1 {
			res.Violations = append(res.Violations, lineageViolation(child, fmt.Sprintf("kitty %d listed %d times under %s", child, listed, parents.Pair())))
		}
	}
	return res, nil
}

func lineageTargets(view domain.RuleView, changes []domain.Change) []KittyID {
	if changes == nil {
		var all []KittyID
		for _, k := range view.ListKitties() {
			all = append(all, k.ID)
		}
		for _, pair := range view.ListParentPairs() {
			all = append(all, view.ChildrenOf(pair.Father, pair.Mother)...)
		}
		slices.Sort(all)
		return slices.Compact(all)
	}
	var out []KittyID
	for _, change := range changes {
		if change.Entity != domain.EntityLineage {
			continue
		}
		if lineage, ok := change.After.(domain.Lineage); ok {
			out = append(out, lineage.Child)
		}
	}
	return out
}

func lineageViolation(child KittyID, message string) domain.Violation {
	return domain.Violation{
		Rule:     lineageRuleName,
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityLineage,
		EntityID: strconv.FormatUint(uint64(child), 10),
	}
}
