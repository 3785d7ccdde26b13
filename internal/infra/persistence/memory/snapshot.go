package memory

import (
	"slices"

	"kittycore/pkg/domain"
)

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Count:    state.count,
		Nonce:    state.nonce,
		Kitties:  make(map[KittyID]Kitty, len(state.kitties)),
		Owners:   make(map[KittyID]AccountID, len(state.owners)),
		Rosters:  make(map[AccountID][]KittyID, len(state.rosters)),
		Parents:  make(map[KittyID]Parents, len(state.parents)),
		Children: make([]domain.ChildrenEntry, 0, len(state.children)),
		Siblings: make(map[KittyID][]KittyID, len(state.siblings)),
		Partners: make(map[KittyID]KittyID, len(state.partners)),
		Accounts: make(map[AccountID]AccountBalance, len(state.accounts)),
	}
	for k, v := range state.kitties {
		s.Kitties[k] = v
	}
	for k, v := range state.owners {
		s.Owners[k] = v
	}
	for k, v := range state.rosters {
		s.Rosters[k] = slices.Clone(v)
	}
	for k, v := range state.parents {
		s.Parents[k] = v
	}
	for pair, ids := range state.children {
		s.Children = append(s.Children, domain.ChildrenEntry{Pair: pair, Children: slices.Clone(ids)})
	}
	slices.SortFunc(s.Children, func(a, b domain.ChildrenEntry) int { return comparePairs(a.Pair, b.Pair) })
	for k, v := range state.siblings {
		s.Siblings[k] = cloneIDs(v)
	}
	for k, v := range state.partners {
		s.Partners[k] = v
	}
	for k, v := range state.accounts {
		s.Accounts[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	state.count = s.Count
	state.nonce = s.Nonce
	for k, v := range s.Kitties {
		state.kitties[k] = v
	}
	for k, v := range s.Owners {
		state.owners[k] = v
	}
	for k, v := range s.Rosters {
		state.rosters[k] = slices.Clone(v)
	}
	for k, v := range s.Parents {
		state.parents[k] = v
	}
	for _, entry := range s.Children {
		state.children[entry.Pair] = append(state.children[entry.Pair], entry.Children...)
	}
	for k, v := range s.Siblings {
		state.siblings[k] = cloneIDs(v)
	}
	for k, v := range s.Partners {
		state.partners[k] = v
	}
	for k, v := range s.Accounts {
		state.accounts[k] = v
	}
	return state
}

// migrateSnapshot normalizes snapshots written by older builds or edited by
// hand: missing maps become empty, ownership entries for unknown kitties are
// dropped, rosters are rebuilt as the inverse of ownership and the counter is
// lifted past the highest stored identifier. Lineage is left as stored so the
// rules engine can reject inconsistent graphs.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Kitties == nil {
		snapshot.Kitties = map[KittyID]Kitty{}
	}
	if snapshot.Owners == nil {
		snapshot.Owners = map[KittyID]AccountID{}
	}
	if snapshot.Rosters == nil {
		snapshot.Rosters = map[AccountID][]KittyID{}
	}
	if snapshot.Parents == nil {
		snapshot.Parents = map[KittyID]Parents{}
	}
	if snapshot.Siblings == nil {
		snapshot.Siblings = map[KittyID][]KittyID{}
	}
	if snapshot.Partners == nil {
		snapshot.Partners = map[KittyID]KittyID{}
	}
	if snapshot.Accounts == nil {
		snapshot.Accounts = map[AccountID]AccountBalance{}
	}

	for id, kitty := range snapshot.Kitties {
		if kitty.ID != id {
			kitty.ID = id
			snapshot.Kitties[id] = kitty
		}
		if id >= snapshot.Count && id < domain.MaxKittyID {
			snapshot.Count = id + 1
		}
	}

	for id, owner := range snapshot.Owners {
		if _, ok := snapshot.Kitties[id]; !ok || owner == "" {
			delete(snapshot.Owners, id)
		}
	}

	snapshot.Rosters = rebuildRosters(snapshot.Rosters, snapshot.Owners)

	for id, partner := range snapshot.Partners {
		_, okA := snapshot.Kitties[id]
		_, okB := snapshot.Kitties[partner]
		if !okA || !okB {
			delete(snapshot.Partners, id)
		}
	}
	return snapshot
}

// rebuildRosters keeps the stored order of ids that are still owned by the
// roster's account and appends owned ids the roster was missing in ascending
// order.
func rebuildRosters(rosters map[AccountID][]KittyID, owners map[KittyID]AccountID) map[AccountID][]KittyID {
	out := make(map[AccountID][]KittyID, len(rosters))
	seen := make(map[KittyID]bool, len(owners))
	for account, ids := range rosters {
		for _, id := range ids {
			if owners[id] != account || seen[id] {
				continue
			}
			seen[id] = true
			out[account] = append(out[account], id)
		}
	}
	missing := make([]KittyID, 0)
	for id := range owners {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	for _, id := range missing {
		out[owners[id]] = append(out[owners[id]], id)
	}
	return out
}
