package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/core"
	"github.com/pixelgram/signaling/internal/domain"
)

// Relay pushes events to the connection owning a user identity.
// Delivery is presence-gated, best-effort, at-most-once: an offline
// target or a full send buffer is a silent drop, never an error to
// the sender.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// Emit sends ev to the connection registered for uid. Reports whether
// the frame was handed to a live connection; callers must not treat
// that as a delivery receipt.
func (r *Relay) Emit(uid domain.UserID, ev Outbound) bool {
	conn, ok := r.registry.Lookup(uid)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("to", string(uid)).Str("event", ev.Name()).Msg("target offline, dropped")
		return false
	}
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", ev.Name()).Msg("marshal")
		return false
	}
	if err := conn.TrySend(core.Frame(frame)); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("to", string(uid)).Str("event", ev.Name()).Msg("send dropped")
		return false
	}
	return true
}

// Broadcast fans ev out to every registered connection.
func (r *Relay) Broadcast(ev Outbound) {
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", ev.Name()).Msg("marshal")
		return
	}
	sent, dropped := 0, 0
	for _, snap := range r.registry.snapshot() {
		if err := snap.Conn.TrySend(core.Frame(frame)); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.relay").Str("event", ev.Name()).Int("sent", sent).Int("dropped", dropped).Msg("broadcast")
}
