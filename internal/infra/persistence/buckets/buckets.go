// Package buckets splits a domain snapshot into the named JSON payloads stored
// by the durable backends and reassembles them on load.
package buckets

import (
	"encoding/json"
	"fmt"

	"kittycore/pkg/domain"
)

// Bucket names in persistence order.
const (
	Meta     = "meta"
	Kitties  = "kitties"
	Owners   = "owners"
	Rosters  = "rosters"
	Parents  = "parents"
	Children = "children"
	Siblings = "siblings"
	Partners = "partners"
	Accounts = "accounts"
)

// Names lists every bucket written by Encode.
var Names = []string{Meta, Kitties, Owners, Rosters, Parents, Children, Siblings, Partners, Accounts}

// Payload is one encoded bucket row.
type Payload struct {
	Bucket string
	Data   []byte
}

type meta struct {
	Count domain.KittyID `json:"count"`
	Nonce uint64         `json:"nonce"`
}

func targets(s *domain.Snapshot, m *meta) map[string]any {
	return map[string]any{
		Meta:     m,
		Kitties:  &s.Kitties,
		Owners:   &s.Owners,
		Rosters:  &s.Rosters,
		Parents:  &s.Parents,
		Children: &s.Children,
		Siblings: &s.Siblings,
		Partners: &s.Partners,
		Accounts: &s.Accounts,
	}
}

// Encode marshals the snapshot into one payload per bucket.
func Encode(snapshot domain.Snapshot) ([]Payload, error) {
	m := meta{Count: snapshot.Count, Nonce: snapshot.Nonce}
	byName := targets(&snapshot, &m)
	out := make([]Payload, 0, len(Names))
	for _, name := range Names {
		data, err := json.Marshal(byName[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out = append(out, Payload{Bucket: name, Data: data})
	}
	return out, nil
}

// Decoder accumulates bucket rows into a snapshot. Unknown buckets and empty
// payloads are skipped.
type Decoder struct {
	snapshot domain.Snapshot
	meta     meta
	targets  map[string]any
	seen     int
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.targets = targets(&d.snapshot, &d.meta)
	return d
}

// Add decodes a single bucket row.
func (d *Decoder) Add(bucket string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	target, ok := d.targets[bucket]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	d.seen++
	return nil
}

// Empty reports whether no known bucket has been decoded.
func (d *Decoder) Empty() bool { return d.seen == 0 }

// Snapshot returns the assembled snapshot.
func (d *Decoder) Snapshot() domain.Snapshot {
	s := d.snapshot
	s.Count = d.meta.Count
	s.Nonce = d.meta.Nonce
	return s
}
