package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/core"
	"github.com/pixelgram/signaling/internal/domain"
)

// Registry maps a user identity to its live signaling connection.
// At most one connection per user; a fresh registration replaces the
// old entry (last-writer-wins). Mutated only by the orchestrator.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]core.SignalConnection)}
}

// Register inserts or replaces the mapping and returns the displaced
// connection, if any. The displaced connection is not closed here;
// its own lifecycle (read-loop exit) tears it down.
func (r *Registry) Register(uid domain.UserID, conn core.SignalConnection) core.SignalConnection {
	r.mu.Lock()
	prev := r.conns[uid]
	r.conns[uid] = conn
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Bool("replaced", prev != nil).Msg("registered")
	return prev
}

// Unregister removes the mapping only if conn is the stored connection.
// A late disconnect of a replaced connection must not evict the entry
// a newer connection just registered.
func (r *Registry) Unregister(uid domain.UserID, conn core.SignalConnection) bool {
	r.mu.Lock()
	cur, ok := r.conns[uid]
	if !ok || cur != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, uid)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("unregistered")
	return true
}

func (r *Registry) Lookup(uid domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[uid]
	return conn, ok
}

func (r *Registry) IsOnline(uid domain.UserID) bool {
	_, ok := r.Lookup(uid)
	return ok
}

// Online returns the sorted set of registered identities.
func (r *Registry) Online() []domain.UserID {
	r.mu.RLock()
	out := make([]domain.UserID, 0, len(r.conns))
	for uid := range r.conns {
		out = append(out, uid)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type connSnap struct {
	UID  domain.UserID
	Conn core.SignalConnection
}

func (r *Registry) snapshot() []connSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]connSnap, 0, len(r.conns))
	for uid, conn := range r.conns {
		out = append(out, connSnap{UID: uid, Conn: conn})
	}
	return out
}
