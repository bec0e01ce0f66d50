package app

import (
	"testing"
	"time"
)

func TestOrchestratorConnectBroadcastsPresence(t *testing.T) {
	orch := NewOrchestrator(time.Second)
	alice := &fakeConn{}
	bob := &fakeConn{}

	orch.OnConnect("alice", alice)
	orch.OnConnect("bob", bob)

	// Alice saw her own connect and then bob's.
	got := alice.eventsOf(t, EventPresenceUpdate)
	if len(got) != 2 {
		t.Fatalf("alice saw %d presence updates, want 2", len(got))
	}
	users := got[1]["users"].([]any)
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Fatalf("final online set = %v", users)
	}
}

func TestOrchestratorDisconnectRebroadcasts(t *testing.T) {
	orch := NewOrchestrator(time.Second)
	alice := &fakeConn{}
	bob := &fakeConn{}
	orch.OnConnect("alice", alice)
	orch.OnConnect("bob", bob)
	alice.reset()

	orch.OnDisconnect("bob", bob)

	got := alice.eventsOf(t, EventPresenceUpdate)
	if len(got) != 1 {
		t.Fatalf("alice saw %d presence updates after disconnect, want 1", len(got))
	}
	users := got[0]["users"].([]any)
	if len(users) != 1 || users[0] != "alice" {
		t.Fatalf("online set after disconnect = %v", users)
	}
	if orch.Registry.IsOnline("bob") {
		t.Fatal("bob must be offline")
	}
}

func TestOrchestratorAnonymousConnectionNotRegistered(t *testing.T) {
	orch := NewOrchestrator(time.Second)
	watcher := &fakeConn{}
	orch.OnConnect("alice", watcher)
	watcher.reset()

	anon := &fakeConn{}
	orch.OnConnect("", anon)

	if len(watcher.events(t)) != 0 {
		t.Fatal("anonymous connect must not broadcast presence")
	}
	if len(orch.Registry.Online()) != 1 {
		t.Fatal("anonymous connection must not be registered")
	}

	// Symmetric: anonymous disconnect must not throw or broadcast.
	orch.OnDisconnect("", anon)
	if len(watcher.events(t)) != 0 {
		t.Fatal("anonymous disconnect must not broadcast presence")
	}
}

func TestOrchestratorStaleDisconnectKeepsFreshConnection(t *testing.T) {
	orch := NewOrchestrator(time.Second)
	old := &fakeConn{}
	orch.OnConnect("alice", old)
	fresh := &fakeConn{}
	orch.OnConnect("alice", fresh)
	fresh.reset()

	// The old connection's read loop exits late; its disconnect must
	// not evict the fresh registration or broadcast anything.
	orch.OnDisconnect("alice", old)

	if !orch.Registry.IsOnline("alice") {
		t.Fatal("fresh connection was evicted by a stale disconnect")
	}
	if len(fresh.events(t)) != 0 {
		t.Fatal("stale disconnect must not broadcast presence")
	}
}

func TestOrchestratorDisconnectClosesTypingBursts(t *testing.T) {
	orch := NewOrchestrator(time.Minute)
	alice := &fakeConn{}
	bob := &fakeConn{}
	orch.OnConnect("alice", alice)
	orch.OnConnect("bob", bob)

	orch.Typing.Keystroke("alice", "bob")
	bob.reset()

	orch.OnDisconnect("alice", alice)

	if n := len(bob.eventsOf(t, EventStopTyping)); n != 1 {
		t.Fatalf("bob saw %d stop-typing events after alice vanished, want 1", n)
	}
}
