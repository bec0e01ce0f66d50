package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/domain"
)

// pairKey identifies a call attempt by its ordered (caller, callee)
// pair. A-calls-B and B-calls-A are distinct sessions.
type pairKey struct {
	caller domain.UserID
	callee domain.UserID
}

// callSession is the signaling state for one call attempt. It is only
// touched under the manager mutex.
type callSession struct {
	id     string
	caller domain.UserID
	callee domain.UserID
	kind   domain.CallKind
	state  domain.CallState

	offer    webrtc.SessionDescription
	answer   webrtc.SessionDescription
	accepted bool

	// startedAt is set exactly once, on the transition into Accepted.
	startedAt time.Time

	// Early ICE candidates per receiving side. A side's queue exists
	// only while that side's remote description is not yet set; it is
	// flushed in order exactly once, then discarded.
	callerReady bool
	calleeReady bool
	toCaller    []webrtc.ICECandidateInit
	toCallee    []webrtc.ICECandidateInit
}

func (s *callSession) outcome() domain.CallOutcome {
	if s.accepted {
		return domain.CallOutcomeCompleted
	}
	return domain.CallOutcomeMissed
}

// CallManager owns every active call session and serializes all
// transitions behind one mutex, so racing accept/end/reject calls
// resolve through the state guards instead of corrupting state.
// Which side is caller vs callee is fixed by which operation fired,
// never inferred from payload content.
type CallManager struct {
	mu       sync.Mutex
	relay    *Relay
	sessions map[pairKey]*callSession
}

func NewCallManager(relay *Relay) *CallManager {
	return &CallManager{
		relay:    relay,
		sessions: make(map[pairKey]*callSession),
	}
}

// Initiate creates a session in Offering and relays the offer to the
// callee. An outstanding session for the same ordered pair is
// superseded. If the callee is unreachable the attempt is discarded:
// the caller gets no unreachable signal here, its UI owns the timeout.
func (m *CallManager) Initiate(caller, callee domain.UserID, kind domain.CallKind, offer webrtc.SessionDescription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{caller: caller, callee: callee}
	if stale, ok := m.sessions[key]; ok {
		log.Warn().Str("module", "app.call").Str("call", stale.id).Str("caller", string(caller)).Str("callee", string(callee)).Msg("superseded by new initiate")
		delete(m.sessions, key)
	}

	sess := &callSession{
		id:     uuid.NewString(),
		caller: caller,
		callee: callee,
		kind:   kind,
		state:  domain.CallStateOffering,
		offer:  offer,
		// The offer travels with incoming-call, so the callee's remote
		// description is ready as soon as the session exists.
		calleeReady: true,
	}

	if !m.relay.Emit(callee, NewIncomingCall(caller, offer, kind)) {
		log.Warn().Str("module", "app.call").Str("call", sess.id).Str("callee", string(callee)).Msg("callee unreachable, call attempt dropped")
		return
	}

	sess.state = domain.CallStateRinging
	m.sessions[key] = sess
	log.Info().Str("module", "app.call").Str("call", sess.id).Str("caller", string(caller)).Str("callee", string(callee)).Str("kind", string(kind)).Msg("ringing")
}

// Accept moves the session to Accepted and relays the answer to the
// caller, then flushes any candidates queued for the caller side.
// A duplicate accept is a no-op: the recorded answer and start
// timestamp are never overwritten.
func (m *CallManager) Accept(callee, caller domain.UserID, answer webrtc.SessionDescription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[pairKey{caller: caller, callee: callee}]
	if !ok {
		log.Warn().Str("module", "app.call").Str("caller", string(caller)).Str("callee", string(callee)).Msg("accept for unknown session, ignored")
		return
	}
	if sess.state != domain.CallStateOffering && sess.state != domain.CallStateRinging {
		log.Warn().Str("module", "app.call").Str("call", sess.id).Str("state", string(sess.state)).Msg("accept in invalid state, ignored")
		return
	}

	sess.state = domain.CallStateAccepted
	sess.accepted = true
	sess.answer = answer
	sess.startedAt = time.Now()
	log.Info().Str("module", "app.call").Str("call", sess.id).Msg("accepted")

	m.relay.Emit(caller, NewCallAccepted(callee, answer))

	// The answer establishes the caller's remote description; replay
	// queued candidates in enqueue order, then drop the queue for good.
	sess.callerReady = true
	for _, cand := range sess.toCaller {
		m.relay.Emit(caller, NewICECandidate(cand))
	}
	sess.toCaller = nil
}

// Reject tears the session down before it was ever accepted.
func (m *CallManager) Reject(callee, caller domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{caller: caller, callee: callee}
	sess, ok := m.sessions[key]
	if !ok {
		log.Warn().Str("module", "app.call").Str("caller", string(caller)).Str("callee", string(callee)).Msg("reject for unknown session, ignored")
		return
	}
	if sess.accepted || sess.state.Terminal() {
		log.Warn().Str("module", "app.call").Str("call", sess.id).Str("state", string(sess.state)).Msg("reject in invalid state, ignored")
		return
	}

	sess.state = domain.CallStateRejected
	delete(m.sessions, key)
	log.Info().Str("module", "app.call").Str("call", sess.id).Msg("rejected")

	m.relay.Emit(caller, NewCallRejected())
}

// End tears down the session from any non-terminal state, whichever
// participant asks first. historySaved is a cooperative contract: the
// side that tears down first records the call with the store, and the
// relayed flag tells the other side to skip a duplicate record. Both
// ends ending at the same instant resolve here: the second End finds
// no session and is a no-op.
func (m *CallManager) End(requester, other domain.UserID, historySaved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, sess, ok := m.findPair(requester, other)
	if !ok {
		log.Debug().Str("module", "app.call").Str("requester", string(requester)).Str("other", string(other)).Msg("end for unknown session, ignored")
		return
	}
	if sess.state.Terminal() {
		return
	}

	sess.state = domain.CallStateEnded
	delete(m.sessions, key)
	log.Info().Str("module", "app.call").Str("call", sess.id).Str("outcome", string(sess.outcome())).Bool("history_saved", historySaved).Msg("ended")

	m.relay.Emit(other, NewCallEnded(historySaved))
}

// Candidate relays an ICE candidate to the far side if that side's
// remote description is already set, otherwise queues it for replay.
// Candidates referencing no active session model the teardown race and
// are dropped.
func (m *CallManager) Candidate(from, to domain.UserID, cand webrtc.ICECandidateInit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, sess, ok := m.findPair(from, to)
	if !ok {
		log.Debug().Str("module", "app.call").Str("from", string(from)).Str("to", string(to)).Msg("candidate for unknown session, dropped")
		return
	}

	ready := &sess.calleeReady
	queue := &sess.toCallee
	if to == sess.caller {
		ready = &sess.callerReady
		queue = &sess.toCaller
	}

	if *ready {
		m.relay.Emit(to, NewICECandidate(cand))
		return
	}
	*queue = append(*queue, cand)
	log.Debug().Str("module", "app.call").Str("call", sess.id).Str("to", string(to)).Int("queued", len(*queue)).Msg("candidate queued")
}

// Active reports whether a call session exists between the two users,
// in either direction.
func (m *CallManager) Active(a, b domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _, ok := m.findPair(a, b)
	return ok
}

// findPair resolves a session between two participants regardless of
// which of them placed the call. Callers hold m.mu.
func (m *CallManager) findPair(a, b domain.UserID) (pairKey, *callSession, bool) {
	key := pairKey{caller: a, callee: b}
	if sess, ok := m.sessions[key]; ok {
		return key, sess, true
	}
	key = pairKey{caller: b, callee: a}
	if sess, ok := m.sessions[key]; ok {
		return key, sess, true
	}
	return pairKey{}, nil, false
}
