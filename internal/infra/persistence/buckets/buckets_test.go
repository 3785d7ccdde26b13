package buckets

import (
	"testing"

	"kittycore/pkg/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := domain.Snapshot{
		Count:    3,
		Nonce:    7,
		Kitties:  map[domain.KittyID]domain.Kitty{0: {ID: 0, DNA: domain.DNA{1}}, 2: {ID: 2}},
		Owners:   map[domain.KittyID]domain.AccountID{0: "alice", 2: "bob"},
		Rosters:  map[domain.AccountID][]domain.KittyID{"alice": {0}, "bob": {2}},
		Parents:  map[domain.KittyID]domain.Parents{2: {Father: 0, Mother: 1}},
		Children: []domain.ChildrenEntry{{Pair: domain.ParentPair{Father: 0, Mother: 1}, Children: []domain.KittyID{2}}},
		Siblings: map[domain.KittyID][]domain.KittyID{2: {}},
		Partners: map[domain.KittyID]domain.KittyID{0: 1, 1: 0},
		Accounts: map[domain.AccountID]domain.AccountBalance{"alice": {Free: 1, Reserved: 2}},
	}
	payloads, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(payloads) != len(Names) {
		t.Fatalf("expected %d payloads, got %d", len(Names), len(payloads))
	}
	dec := NewDecoder()
	if !dec.Empty() {
		t.Fatalf("new decoder should be empty")
	}
	for _, p := range payloads {
		if err := dec.Add(p.Bucket, p.Data); err != nil {
			t.Fatalf("add %s: %v", p.Bucket, err)
		}
	}
	if err := dec.Add("legacy", []byte(`{}`)); err != nil {
		t.Fatalf("unknown bucket should be ignored: %v", err)
	}
	out := dec.Snapshot()
	if out.Count != 3 || out.Nonce != 7 {
		t.Fatalf("meta lost: %+v", out)
	}
	if out.Kitties[0].DNA != in.Kitties[0].DNA || out.Owners[2] != "bob" {
		t.Fatalf("kitties lost: %+v", out)
	}
	if len(out.Children) != 1 || out.Children[0].Children[0] != 2 {
		t.Fatalf("children lost: %+v", out.Children)
	}
	if out.Accounts["alice"].Reserved != 2 {
		t.Fatalf("accounts lost: %+v", out.Accounts)
	}
}

func TestDecoderRejectsCorruptPayload(t *testing.T) {
	dec := NewDecoder()
	if err := dec.Add(Kitties, []byte(`{"0":`)); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := dec.Add(Owners, nil); err != nil || !dec.Empty() {
		t.Fatalf("empty payload should be skipped")
	}
}
