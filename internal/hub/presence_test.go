package hub

import "testing"

func TestPresenceRegisterAndSnapshot(t *testing.T) {
	p := NewPresenceRegistry()

	alice := NewClient("c1", Identity{UserID: 1, Username: "alice"})
	bob := NewClient("c2", Identity{UserID: 2, Username: "bob"})

	if err := p.Register(alice); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if err := p.Register(bob); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap))
	}
	if snap[0].Username != "alice" || snap[1].Username != "bob" {
		t.Fatalf("expected connect order, got %+v", snap)
	}
}

func TestPresenceRejectsDuplicateConnID(t *testing.T) {
	p := NewPresenceRegistry()

	first := NewClient("c1", Identity{UserID: 1, Username: "alice"})
	if err := p.Register(first); err != nil {
		t.Fatalf("register: %v", err)
	}

	imposter := NewClient("c1", Identity{UserID: 2, Username: "bob"})
	if err := p.Register(imposter); err == nil {
		t.Fatal("expected error for duplicate connection id")
	}

	if got, _ := p.Get("c1"); got != first {
		t.Fatal("existing entry was overwritten")
	}
}

func TestPresenceMultiDeviceSessionsNotCollapsed(t *testing.T) {
	p := NewPresenceRegistry()

	phone := NewClient("c1", Identity{UserID: 7, Username: "alice"})
	laptop := NewClient("c2", Identity{UserID: 7, Username: "alice"})

	_ = p.Register(phone)
	_ = p.Register(laptop)

	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 separate entries for one user, got %d", len(snap))
	}

	sessions := p.SessionsOf(7)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %v", sessions)
	}
	if sessions[0] != "c1" || sessions[1] != "c2" {
		t.Fatalf("expected connect order, got %v", sessions)
	}
}

func TestPresenceUnregisterIsIdempotent(t *testing.T) {
	p := NewPresenceRegistry()

	alice := NewClient("c1", Identity{UserID: 1, Username: "alice"})
	_ = p.Register(alice)

	p.Unregister("c1")
	p.Unregister("c1") // second call must be a no-op
	p.Unregister("never-existed")

	if p.Len() != 0 {
		t.Fatalf("expected empty registry, got %d entries", p.Len())
	}
	if got := p.SessionsOf(1); len(got) != 0 {
		t.Fatalf("expected no sessions, got %v", got)
	}
}
