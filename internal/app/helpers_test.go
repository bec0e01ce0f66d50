package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/pixelgram/signaling/internal/core"
)

// fakeConn records every frame pushed through it.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("closed")
	}
	if f.full {
		return errors.New("backpressure")
	}
	cp := make(core.Frame, len(fr))
	copy(cp, fr)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// events decodes recorded frames into generic maps.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

// eventsOf filters decoded frames by event type.
func (f *fakeConn) eventsOf(t *testing.T, event string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, m := range f.events(t) {
		if m["type"] == event {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}
