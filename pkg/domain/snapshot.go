package domain

// Snapshot captures a point-in-time copy of every keyed store in the state
// container. It is the unit persisted by durable backends and archives.
type Snapshot struct {
	Count    KittyID                      `json:"count"`
	Nonce    uint64                       `json:"nonce"`
	Kitties  map[KittyID]Kitty            `json:"kitties"`
	Owners   map[KittyID]AccountID        `json:"owners"`
	Rosters  map[AccountID][]KittyID      `json:"rosters"`
	Parents  map[KittyID]Parents          `json:"parents"`
	Children []ChildrenEntry              `json:"children"`
	Siblings map[KittyID][]KittyID        `json:"siblings"`
	Partners map[KittyID]KittyID          `json:"partners"`
	Accounts map[AccountID]AccountBalance `json:"accounts"`
}

// ChildrenEntry is one row of the children index. Pair-keyed maps cannot be
// JSON object keys, so the index is flattened to a list.
type ChildrenEntry struct {
	Pair     ParentPair `json:"pair"`
	Children []KittyID  `json:"children"`
}
