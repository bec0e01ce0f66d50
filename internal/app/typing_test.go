package app

import (
	"testing"
	"time"
)

func newTypingFixture(window time.Duration) (*TypingNotifier, *fakeConn) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	receiver := &fakeConn{}
	registry.Register("bob", receiver)
	return NewTypingNotifier(relay, window), receiver
}

func waitForEvents(t *testing.T, conn *fakeConn, event string, want int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(conn.eventsOf(t, event)) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d %s events, have %d", want, event, len(conn.eventsOf(t, event)))
}

func TestTypingBurstCoalesces(t *testing.T) {
	typing, receiver := newTypingFixture(80 * time.Millisecond)

	for i := 0; i < 10; i++ {
		typing.Keystroke("alice", "bob")
	}

	if n := len(receiver.eventsOf(t, EventTyping)); n != 1 {
		t.Fatalf("burst produced %d typing events, want 1", n)
	}

	waitForEvents(t, receiver, EventStopTyping, 1, time.Second)
	if n := len(receiver.eventsOf(t, EventStopTyping)); n != 1 {
		t.Fatalf("burst produced %d stop-typing events, want 1", n)
	}
}

func TestTypingKeystrokeExtendsBurst(t *testing.T) {
	typing, receiver := newTypingFixture(60 * time.Millisecond)

	typing.Keystroke("alice", "bob")
	// Keep the burst alive past the original window.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		typing.Keystroke("alice", "bob")
	}

	if n := len(receiver.eventsOf(t, EventStopTyping)); n != 0 {
		t.Fatalf("burst expired early, %d stop-typing events", n)
	}
	waitForEvents(t, receiver, EventStopTyping, 1, time.Second)
}

func TestTypingExplicitStop(t *testing.T) {
	typing, receiver := newTypingFixture(time.Minute)

	typing.Keystroke("alice", "bob")
	typing.Stop("alice", "bob")

	if n := len(receiver.eventsOf(t, EventStopTyping)); n != 1 {
		t.Fatalf("stop produced %d stop-typing events, want 1", n)
	}

	// Stop without an active burst is a no-op.
	typing.Stop("alice", "bob")
	if n := len(receiver.eventsOf(t, EventStopTyping)); n != 1 {
		t.Fatalf("idle stop produced extra events, total %d", n)
	}

	// A fresh burst after stop relays typing again.
	typing.Keystroke("alice", "bob")
	if n := len(receiver.eventsOf(t, EventTyping)); n != 2 {
		t.Fatalf("new burst after stop produced %d typing events, want 2", n)
	}
}

func TestTypingPairsAreIndependent(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	bob := &fakeConn{}
	carol := &fakeConn{}
	registry.Register("bob", bob)
	registry.Register("carol", carol)
	typing := NewTypingNotifier(relay, time.Minute)

	typing.Keystroke("alice", "bob")
	typing.Keystroke("alice", "carol")

	if len(bob.eventsOf(t, EventTyping)) != 1 || len(carol.eventsOf(t, EventTyping)) != 1 {
		t.Fatal("each receiver gets its own typing event")
	}

	typing.Stop("alice", "bob")
	if len(carol.eventsOf(t, EventStopTyping)) != 0 {
		t.Fatal("stopping one pair must not close the other")
	}
}

func TestTypingClearUser(t *testing.T) {
	typing, receiver := newTypingFixture(time.Minute)

	typing.Keystroke("alice", "bob")
	typing.ClearUser("alice")

	if n := len(receiver.eventsOf(t, EventStopTyping)); n != 1 {
		t.Fatalf("clear produced %d stop-typing events, want 1", n)
	}
}
