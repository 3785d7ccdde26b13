package core_test

import (
	"context"
	"testing"

	"kittycore/internal/core"
	"kittycore/pkg/domain"
)

func TestEventsEmittedAfterCommit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var created []domain.KittyCreated
	unsubscribe := core.Subscribe(svc.Events(), func(ev domain.KittyCreated) {
		created = append(created, ev)
	})
	var transferred []domain.KittyTransferred
	core.Subscribe(svc.Events(), func(ev domain.KittyTransferred) {
		transferred = append(transferred, ev)
	})

	a := mustCreate(t, svc, alice)
	b := mustCreate(t, svc, alice)
	child := mustBreed(t, svc, alice, a, b)
	if err := svc.Transfer(ctx, alice, bob, child); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := svc.Transfer(ctx, alice, bob, child); err == nil {
		t.Fatalf("expected second transfer to fail")
	}

	if len(created) != 3 || created[2] != (domain.KittyCreated{Owner: alice, KittyID: child}) {
		t.Fatalf("unexpected created events %+v", created)
	}
	if len(transferred) != 1 || transferred[0] != (domain.KittyTransferred{From: alice, To: bob, KittyID: child}) {
		t.Fatalf("unexpected transfer events %+v", transferred)
	}

	unsubscribe()
	mustCreate(t, svc, bob)
	if len(created) != 3 {
		t.Fatalf("unsubscribed handler still invoked")
	}

	names := make([]string, 0)
	for _, ev := range svc.Events().Events() {
		names = append(names, ev.EventName())
	}
	want := []string{"created", "created", "created", "transferred", "created"}
	if len(names) != len(want) {
		t.Fatalf("event log %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestSharedEventLog(t *testing.T) {
	log := core.NewEventLog()
	svc := newTestService(t, core.WithEventLog(log))
	if svc.Events() != log {
		t.Fatalf("service did not adopt the shared log")
	}
	mustCreate(t, svc, alice)
	if len(log.Events()) != 1 {
		t.Fatalf("expected one event, got %d", len(log.Events()))
	}
}
