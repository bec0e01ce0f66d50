package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/core"
	"github.com/pixelgram/signaling/internal/domain"
)

// Orchestrator binds a physical connection to a user identity at
// connect/disconnect and owns the presence broadcast. Everything else
// goes through the components it wires together.
type Orchestrator struct {
	Registry *Registry
	Relay    *Relay
	Calls    *CallManager
	Typing   *TypingNotifier
}

func NewOrchestrator(typingWindow time.Duration) *Orchestrator {
	registry := NewRegistry()
	relay := NewRelay(registry)
	return &Orchestrator{
		Registry: registry,
		Relay:    relay,
		Calls:    NewCallManager(relay),
		Typing:   NewTypingNotifier(relay, typingWindow),
	}
}

// OnConnect registers the connection and broadcasts the new online
// set. An empty identity means the handshake carried no userId: the
// connection stays open but is unaddressable and never registered.
func (o *Orchestrator) OnConnect(uid domain.UserID, conn core.SignalConnection) {
	if uid == "" {
		log.Info().Str("module", "app.orch").Msg("anonymous connection, not registered")
		return
	}
	o.Registry.Register(uid, conn)
	o.broadcastPresence()
}

// OnDisconnect unbinds the connection and rebroadcasts presence. Safe
// to call for identities that were never registered, and a no-op when
// a newer connection already replaced this one. Call sessions are not
// torn down here: relays to the absent identity drop, and the peer is
// expected to issue its own end.
func (o *Orchestrator) OnDisconnect(uid domain.UserID, conn core.SignalConnection) {
	if uid == "" {
		return
	}
	if !o.Registry.Unregister(uid, conn) {
		return
	}
	o.Typing.ClearUser(uid)
	o.broadcastPresence()
}

func (o *Orchestrator) broadcastPresence() {
	o.Relay.Broadcast(NewPresenceUpdate(o.Registry.Online()))
}
