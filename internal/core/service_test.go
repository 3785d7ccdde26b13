package core_test

import (
	"context"
	"errors"
	"testing"

	"kittycore/internal/core"
	"kittycore/internal/entropy"
	"kittycore/pkg/domain"
)

func TestCreateAllocatesMonotonicIDs(t *testing.T) {
	svc := newTestService(t)
	var last core.KittyID
	for i := 0; i < 5; i++ {
		id := mustCreate(t, svc, alice)
		if i > 0 && id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
	count, err := svc.KittiesCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}
}

func TestCreateDerivesDNAFromSeedCallerAndNonce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first := mustCreate(t, svc, alice)
	second := mustCreate(t, svc, alice)

	k1, ok, err := svc.Kitty(ctx, first)
	if err != nil || !ok {
		t.Fatalf("kitty %d: ok=%v err=%v", first, ok, err)
	}
	k2, _, _ := svc.Kitty(ctx, second)
	if k1.DNA != entropy.Derive(testSeed, alice, 0) {
		t.Fatalf("unexpected dna for first kitty: %s", k1.DNA)
	}
	if k2.DNA != entropy.Derive(testSeed, alice, 1) {
		t.Fatalf("unexpected dna for second kitty: %s", k2.DNA)
	}
	if k1.DNA == k2.DNA {
		t.Fatalf("fixed seed must still yield distinct dna")
	}
}

func TestLineageScenarioWithStaleSiblings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)
	if a != 0 || b != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", a, b)
	}

	c := mustBreed(t, svc, alice, a, b)
	if c != 2 {
		t.Fatalf("expected child 2, got %d", c)
	}
	parents, ok, err := svc.ParentsOf(ctx, c)
	if err != nil || !ok {
		t.Fatalf("parents of %d: ok=%v err=%v", c, ok, err)
	}
	if parents != (core.Parents{Father: a, Mother: b}) {
		t.Fatalf("unexpected parents %+v", parents)
	}
	children, _ := svc.ChildrenOf(ctx, a, b)
	if !equalIDs(children, []core.KittyID{2}) {
		t.Fatalf("children_of(0,1) = %v", children)
	}
	siblings, _ := svc.SiblingsOf(ctx, c)
	if len(siblings) != 0 {
		t.Fatalf("only child should have no siblings, got %v", siblings)
	}

	d := mustBreed(t, svc, alice, a, b)
	if d != 3 {
		t.Fatalf("expected child 3, got %d", d)
	}
	children, _ = svc.ChildrenOf(ctx, a, b)
	if !equalIDs(children, []core.KittyID{2, 3}) {
		t.Fatalf("children_of(0,1) = %v", children)
	}
	siblings, _ = svc.SiblingsOf(ctx, d)
	if !equalIDs(siblings, []core.KittyID{2}) {
		t.Fatalf("siblings_of(3) = %v", siblings)
	}
	siblings, _ = svc.SiblingsOf(ctx, c)
	if len(siblings) != 0 {
		t.Fatalf("siblings of the older child are cached at birth, got %v", siblings)
	}

	// reversed pair is a distinct key
	reversed, _ := svc.ChildrenOf(ctx, b, a)
	if len(reversed) != 0 {
		t.Fatalf("children_of(1,0) = %v", reversed)
	}

	for _, pair := range [][2]core.KittyID{{a, b}, {b, a}} {
		partner, ok, _ := svc.PartnerOf(ctx, pair[0])
		if !ok || partner != pair[1] {
			t.Fatalf("partner of %d: got %d ok=%v", pair[0], partner, ok)
		}
	}
	if _, ok, _ := svc.ParentsOf(ctx, a); ok {
		t.Fatalf("spawned kitty must have no parents")
	}
}

func TestBreedCombinesParentDNA(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)
	child := mustBreed(t, svc, alice, a, b)

	ka, _, _ := svc.Kitty(ctx, a)
	kb, _, _ := svc.Kitty(ctx, b)
	kc, _, _ := svc.Kitty(ctx, child)
	selector := entropy.Derive(testSeed, alice, 2)
	if want := domain.Combine(ka.DNA, kb.DNA, selector); kc.DNA != want {
		t.Fatalf("child dna %s, want %s", kc.DNA, want)
	}
}

func TestBreedRejectsSameParentRegardlessOfOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owned := mustCreate(t, svc, alice)
	for _, tc := range []struct {
		name   string
		caller core.AccountID
		id     core.KittyID
	}{
		{"owner", alice, owned},
		{"non-owner", bob, owned},
		{"missing", alice, 99},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Breed(ctx, tc.caller, tc.id, tc.id)
			if !errors.Is(err, domain.ErrRequireDifferentParent) {
				t.Fatalf("expected ErrRequireDifferentParent, got %v", err)
			}
		})
	}
}

func TestBreedChecksExistenceBeforeOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mine := mustCreate(t, svc, alice)
	theirs := mustCreate(t, svc, bob)

	if _, err := svc.Breed(ctx, alice, theirs, 42); !errors.Is(err, domain.ErrKittyNotFound) {
		t.Fatalf("expected not found before ownership, got %v", err)
	}
	if _, err := svc.Breed(ctx, alice, mine, theirs); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
	count, _ := svc.KittiesCount(ctx)
	if count != 2 {
		t.Fatalf("failed breeding must not allocate, count=%d", count)
	}
	if _, ok, _ := svc.PartnerOf(ctx, mine); ok {
		t.Fatalf("failed breeding must not record partners")
	}
}

func TestInsufficientStakeWastesNoID(t *testing.T) {
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine(), core.WithRandomness(entropy.FixedSource(testSeed)))
	ctx := context.Background()
	if _, err := svc.Endow(ctx, alice, 2*core.DefaultNewKittyReserve+50); err != nil {
		t.Fatalf("endow: %v", err)
	}
	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)

	_, err := svc.Breed(ctx, alice, a, b)
	if !errors.Is(err, domain.ErrInsufficientStake) {
		t.Fatalf("expected ErrInsufficientStake, got %v", err)
	}
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("stake error should wrap the ledger error, got %v", err)
	}
	if _, err := svc.Create(ctx, alice); !errors.Is(err, domain.ErrInsufficientStake) {
		t.Fatalf("expected ErrInsufficientStake on create, got %v", err)
	}

	count, _ := svc.KittiesCount(ctx)
	if count != 2 {
		t.Fatalf("expected count 2 after failed calls, got %d", count)
	}
	if children, _ := svc.ChildrenOf(ctx, a, b); len(children) != 0 {
		t.Fatalf("failed breeding left children %v", children)
	}
	bal, _ := svc.Account(ctx, alice)
	if bal.Free != 50 || bal.Reserved != 2*core.DefaultNewKittyReserve {
		t.Fatalf("unexpected balance %+v", bal)
	}

	if _, err := svc.Endow(ctx, alice, 50); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if id := mustCreate(t, svc, alice); id != 2 {
		t.Fatalf("next id should be 2 after rollbacks, got %d", id)
	}
}

func TestTransferMovesRoster(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first := mustCreate(t, svc, alice)
	second := mustCreate(t, svc, alice)

	if err := svc.Transfer(ctx, alice, bob, first); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	owner, ok, _ := svc.OwnerOf(ctx, first)
	if !ok || owner != bob {
		t.Fatalf("owner after transfer: %q ok=%v", owner, ok)
	}
	mine, _ := svc.KittiesOf(ctx, alice)
	if !equalIDs(mine, []core.KittyID{second}) {
		t.Fatalf("sender roster %v", mine)
	}
	theirs, _ := svc.KittiesOf(ctx, bob)
	if !equalIDs(theirs, []core.KittyID{first}) {
		t.Fatalf("receiver roster %v", theirs)
	}

	if err := svc.Transfer(ctx, bob, alice, first); err != nil {
		t.Fatalf("transfer back: %v", err)
	}
	mine, _ = svc.KittiesOf(ctx, alice)
	if !equalIDs(mine, []core.KittyID{second, first}) {
		t.Fatalf("roster should keep acquisition order, got %v", mine)
	}
}

func TestTransferErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, alice)

	cases := []struct {
		name     string
		from, to core.AccountID
		id       core.KittyID
		want     error
	}{
		{"missing", alice, bob, 7, domain.ErrKittyNotFound},
		{"not owner", bob, alice, id, domain.ErrNotOwner},
		{"self", alice, alice, id, domain.ErrTransferToSelf},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Transfer(ctx, tc.from, tc.to, tc.id); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	owner, _, _ := svc.OwnerOf(ctx, id)
	if owner != alice {
		t.Fatalf("failed transfers changed owner to %q", owner)
	}
}

func TestTransferKeepsLineage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)
	c := mustBreed(t, svc, alice, a, b)
	if err := svc.Transfer(ctx, alice, bob, a); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	parents, ok, _ := svc.ParentsOf(ctx, c)
	if !ok || parents.Father != a {
		t.Fatalf("lineage changed by transfer: %+v", parents)
	}
	if _, err := svc.Breed(ctx, alice, a, b); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("breeding requires owning both parents, got %v", err)
	}
}

func TestEndowRejectsOverflow(t *testing.T) {
	svc := core.NewInMemoryService(nil)
	ctx := context.Background()
	if _, err := svc.Endow(ctx, alice, ^core.Balance(0)); err != nil {
		t.Fatalf("endow: %v", err)
	}
	if _, err := svc.Endow(ctx, alice, 1); !errors.Is(err, domain.ErrBalanceOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestEmptyAccountRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)
	if _, err := svc.Create(ctx, ""); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("create: expected ErrInvalidAccount, got %v", err)
	}
	if _, err := svc.Breed(ctx, "", a, b); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("breed: expected ErrInvalidAccount, got %v", err)
	}
	if err := svc.Transfer(ctx, alice, "", a); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("transfer: expected ErrInvalidAccount, got %v", err)
	}
	if _, err := svc.Endow(ctx, "", 10); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("endow: expected ErrInvalidAccount, got %v", err)
	}
	count, _ := svc.KittiesCount(ctx)
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if owner, _, _ := svc.OwnerOf(ctx, a); owner != alice {
		t.Fatalf("expected alice to keep kitty %d, got %q", a, owner)
	}
}

func TestEndowAllIsAtomic(t *testing.T) {
	svc := core.NewInMemoryService(core.NewDefaultRulesEngine())
	ctx := context.Background()
	err := svc.EndowAll(ctx, []core.Endowment{
		{Account: alice, Amount: 10},
		{Account: bob, Amount: 5},
		{Account: alice, Amount: ^core.Balance(0)},
	})
	if !errors.Is(err, domain.ErrBalanceOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	for _, acct := range []core.AccountID{alice, bob} {
		if bal, _ := svc.Account(ctx, acct); bal != (core.AccountBalance{}) {
			t.Fatalf("partial endowment for %s: %+v", acct, bal)
		}
	}
	if err := svc.EndowAll(ctx, []core.Endowment{{Account: alice, Amount: 10}, {Account: "", Amount: 1}}); !errors.Is(err, domain.ErrInvalidAccount) {
		t.Fatalf("expected invalid account, got %v", err)
	}

	if err := svc.EndowAll(ctx, []core.Endowment{{Account: alice, Amount: 10}, {Account: bob, Amount: 5}}); err != nil {
		t.Fatalf("endow all: %v", err)
	}
	if bal, _ := svc.Account(ctx, bob); bal.Free != 5 {
		t.Fatalf("expected bob credited, got %+v", bal)
	}
}

func TestNewKittyReserveOption(t *testing.T) {
	svc := core.NewInMemoryService(nil, core.WithNewKittyReserve(0))
	if svc.NewKittyReserve() != 0 {
		t.Fatalf("reserve option ignored: %d", svc.NewKittyReserve())
	}
	if _, err := svc.Create(context.Background(), alice); err != nil {
		t.Fatalf("zero stake create should succeed without funds: %v", err)
	}
}
