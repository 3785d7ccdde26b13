package memory

import (
	"slices"

	"kittycore/pkg/domain"
)

// transactionView exposes read-only accessors over a memoryState. Returned
// slices are copies so callers cannot reach back into the state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) KittiesCount() KittyID {
	return v.state.count
}

func (v transactionView) ListKitties() []Kitty {
	out := make([]Kitty, 0, len(v.state.kitties))
	for _, k := range v.state.kitties {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Kitty) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (v transactionView) FindKitty(id KittyID) (Kitty, bool) {
	k, ok := v.state.kitties[id]
	return k, ok
}

func (v transactionView) OwnerOf(id KittyID) (AccountID, bool) {
	owner, ok := v.state.owners[id]
	return owner, ok
}

func (v transactionView) KittiesOf(account AccountID) []KittyID {
	return cloneIDs(v.state.rosters[account])
}

func (v transactionView) ListRosterAccounts() []AccountID {
	out := make([]AccountID, 0, len(v.state.rosters))
	for account := range v.state.rosters {
		out = append(out, account)
	}
	slices.Sort(out)
	return out
}

func (v transactionView) ParentsOf(id KittyID) (Parents, bool) {
	p, ok := v.state.parents[id]
	return p, ok
}

func (v transactionView) ChildrenOf(father, mother KittyID) []KittyID {
	return cloneIDs(v.state.children[ParentPair{Father: father, Mother: mother}])
}

func (v transactionView) ListParentPairs() []ParentPair {
	out := make([]ParentPair, 0, len(v.state.children))
	for pair := range v.state.children {
		out = append(out, pair)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

func (v transactionView) SiblingsOf(id KittyID) []KittyID {
	return cloneIDs(v.state.siblings[id])
}

func (v transactionView) PartnerOf(id KittyID) (KittyID, bool) {
	p, ok := v.state.partners[id]
	return p, ok
}

func (v transactionView) Account(account AccountID) AccountBalance {
	return v.state.accounts[account]
}

// cloneIDs returns a non-nil copy so empty lookups read as [] rather than null.
func cloneIDs(ids []KittyID) []KittyID {
	if len(ids) == 0 {
		return []KittyID{}
	}
	return slices.Clone(ids)
}

func compareIDs(a, b KittyID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePairs(a, b ParentPair) int {
	if c := compareIDs(a.Father, b.Father); c != 0 {
		return c
	}
	return compareIDs(a.Mother, b.Mother)
}

var _ domain.RuleView = transactionView{}
