package memory

import "kittycore/pkg/domain"

// RecordParents writes the lineage entry of child unconditionally.
func (tx *transaction) RecordParents(child, father, mother KittyID) {
	parents := Parents{Father: father, Mother: mother}
	tx.state.parents[child] = parents
	tx.recordChange(Change{
		Entity: domain.EntityLineage,
		Action: domain.ActionCreate,
		After:  domain.Lineage{Child: child, Parents: parents},
	})
}

// RecordChild appends child to the ordered children list of (father, mother).
func (tx *transaction) RecordChild(father, mother, child KittyID) {
	pair := ParentPair{Father: father, Mother: mother}
	tx.state.children[pair] = append(tx.state.children[pair], child)
}

// RecomputeSiblings rewrites the sibling cache of child only. Earlier
// siblings keep whatever list they had when they were born.
func (tx *transaction) RecomputeSiblings(child KittyID) {
	parents, ok := tx.state.parents[child]
	if !ok {
		tx.state.siblings[child] = []KittyID{}
		return
	}
	all := tx.state.children[parents.Pair()]
	siblings := make([]KittyID, 0, len(all))
	for _, id := range all {
		if id != child {
			siblings = append(siblings, id)
		}
	}
	tx.state.siblings[child] = siblings
}

// RecordPartner overwrites the partner entry of a with b.
func (tx *transaction) RecordPartner(a, b KittyID) {
	tx.state.partners[a] = b
}
