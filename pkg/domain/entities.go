// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by kittycore.
package domain

import (
	"fmt"
	"math"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityKitty identifies a kitty record.
	EntityKitty EntityType = "kitty"
	// EntityOwnership identifies an owner assignment of a kitty.
	EntityOwnership EntityType = "ownership"
	// EntityLineage identifies parent/child/sibling/partner index entries.
	EntityLineage EntityType = "lineage"
	// EntityAccount identifies an account balance record.
	EntityAccount EntityType = "account"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// AccountID identifies an already-authenticated caller.
type AccountID string

// KittyID is the dense, monotonically assigned kitty identifier.
type KittyID uint32

// MaxKittyID is the upper bound of the identifier space. The allocator refuses
// to hand it out so that count+1 never wraps.
const MaxKittyID KittyID = math.MaxUint32

// Balance is an amount of the fungible currency used for stake.
type Balance uint64

// Kitty is a single entity and its heritable code.
type Kitty struct {
	ID  KittyID `json:"id"`
	DNA DNA     `json:"dna"`
}

// Parents records the breeding pair a kitty was derived from.
type Parents struct {
	Father KittyID `json:"father"`
	Mother KittyID `json:"mother"`
}

// ParentPair keys the children index. The order is significant: (a, b) and
// (b, a) are distinct pairs.
type ParentPair struct {
	Father KittyID `json:"father"`
	Mother KittyID `json:"mother"`
}

func (p ParentPair) String() string {
	return fmt.Sprintf("(%d,%d)", p.Father, p.Mother)
}

// Pair returns the children index key for the parents.
func (p Parents) Pair() ParentPair {
	return ParentPair(p)
}

// AccountBalance splits an account's funds into spendable and reserved parts.
type AccountBalance struct {
	Free     Balance `json:"free"`
	Reserved Balance `json:"reserved"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("transaction blocked by rules: %s: %s", v.Rule, v.Message)
		}
	}
	return "transaction blocked by rules"
}

// Ownership is the change payload for owner assignments.
type Ownership struct {
	KittyID KittyID   `json:"kitty_id"`
	Owner   AccountID `json:"owner"`
}

// Lineage is the change payload for a recorded parent pair.
type Lineage struct {
	Child   KittyID `json:"child"`
	Parents Parents `json:"parents"`
}

// AccountEntry is the change payload for balance mutations.
type AccountEntry struct {
	Account AccountID      `json:"account"`
	Balance AccountBalance `json:"balance"`
}
