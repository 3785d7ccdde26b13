package domain

import "context"

// RuleView provides read-only access to domain entities for rule evaluation.
type RuleView interface {
	KittiesCount() KittyID
	ListKitties() []Kitty
	FindKitty(id KittyID) (Kitty, bool)
	OwnerOf(id KittyID) (AccountID, bool)
	KittiesOf(account AccountID) []KittyID
	ListRosterAccounts() []AccountID
	ParentsOf(id KittyID) (Parents, bool)
	ChildrenOf(father, mother KittyID) []KittyID
	ListParentPairs() []ParentPair
	SiblingsOf(id KittyID) []KittyID
	PartnerOf(id KittyID) (KittyID, bool)
	Account(account AccountID) AccountBalance
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rule names in evaluation order.
func (e *RulesEngine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		names = append(names, rule.Name())
	}
	return names
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
