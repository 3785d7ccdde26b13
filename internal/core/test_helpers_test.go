package core_test

import (
	"context"
	"testing"

	"kittycore/internal/core"
	"kittycore/internal/entropy"
)

const (
	alice core.AccountID = "alice"
	bob   core.AccountID = "bob"
)

var testSeed = [32]byte{1, 2, 3, 4, 5, 6, 7, 8}

// newTestService returns an in-memory service with the default rules and a
// fixed seed, with alice and bob endowed for ten kitties each.
func newTestService(t *testing.T, opts ...core.ServiceOption) *core.Service {
	t.Helper()
	opts = append([]core.ServiceOption{core.WithRandomness(entropy.FixedSource(testSeed))}, opts...)
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), opts...)
	ctx := context.Background()
	for _, acct := range []core.AccountID{alice, bob} {
		if _, err := svc.Endow(ctx, acct, 10*core.DefaultNewKittyReserve); err != nil {
			t.Fatalf("endow %s: %v", acct, err)
		}
	}
	return svc
}

func mustCreate(t *testing.T, svc *core.Service, caller core.AccountID) core.KittyID {
	t.Helper()
	id, err := svc.Create(context.Background(), caller)
	if err != nil {
		t.Fatalf("create for %s: %v", caller, err)
	}
	return id
}

func mustBreed(t *testing.T, svc *core.Service, caller core.AccountID, a, b core.KittyID) core.KittyID {
	t.Helper()
	id, err := svc.Breed(context.Background(), caller, a, b)
	if err != nil {
		t.Fatalf("breed %d x %d: %v", a, b, err)
	}
	return id
}

func equalIDs(a, b []core.KittyID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
