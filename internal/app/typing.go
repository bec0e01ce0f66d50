package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/domain"
)

const DefaultTypingTimeout = 3 * time.Second

type typingKey struct {
	from domain.UserID
	to   domain.UserID
}

// TypingNotifier turns raw keystroke notifications into at-most-one
// typing relay per burst, closed by an explicit stop or by the
// inactivity timer. State is transient and per process; losing it on
// restart is fine.
type TypingNotifier struct {
	relay  *Relay
	window time.Duration

	mu     sync.Mutex
	bursts map[typingKey]*time.Timer
}

func NewTypingNotifier(relay *Relay, window time.Duration) *TypingNotifier {
	if window <= 0 {
		window = DefaultTypingTimeout
	}
	return &TypingNotifier{
		relay:  relay,
		window: window,
		bursts: make(map[typingKey]*time.Timer),
	}
}

// Keystroke opens a burst for (from, to) or extends the running one.
// Only the opening keystroke relays a typing event.
func (t *TypingNotifier) Keystroke(from, to domain.UserID) {
	key := typingKey{from: from, to: to}

	t.mu.Lock()
	if timer, ok := t.bursts[key]; ok {
		timer.Reset(t.window)
		t.mu.Unlock()
		return
	}
	t.bursts[key] = time.AfterFunc(t.window, func() { t.expire(key) })
	t.mu.Unlock()

	t.relay.Emit(to, NewTyping(from))
}

// Stop closes the burst explicitly; a no-op if none is active.
func (t *TypingNotifier) Stop(from, to domain.UserID) {
	key := typingKey{from: from, to: to}

	t.mu.Lock()
	timer, ok := t.bursts[key]
	if ok {
		timer.Stop()
		delete(t.bursts, key)
	}
	t.mu.Unlock()

	if ok {
		t.relay.Emit(to, NewStopTyping(from))
	}
}

func (t *TypingNotifier) expire(key typingKey) {
	t.mu.Lock()
	_, ok := t.bursts[key]
	if ok {
		delete(t.bursts, key)
	}
	t.mu.Unlock()

	if ok {
		log.Debug().Str("module", "app.typing").Str("from", string(key.from)).Str("to", string(key.to)).Msg("burst expired")
		t.relay.Emit(key.to, NewStopTyping(key.from))
	}
}

// ClearUser closes every burst the given user had open, notifying the
// receivers. Called when the user's connection goes away.
func (t *TypingNotifier) ClearUser(uid domain.UserID) {
	t.mu.Lock()
	var closed []typingKey
	for key, timer := range t.bursts {
		if key.from == uid {
			timer.Stop()
			delete(t.bursts, key)
			closed = append(closed, key)
		}
	}
	t.mu.Unlock()

	for _, key := range closed {
		t.relay.Emit(key.to, NewStopTyping(key.from))
	}
}
