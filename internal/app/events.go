package app

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/pixelgram/signaling/internal/domain"
)

// Event names pushed to clients. Part of the wire protocol.
const (
	EventPresenceUpdate = "presence-update"
	EventIncomingCall   = "incoming-call"
	EventCallAccepted   = "call-accepted"
	EventCallRejected   = "call-rejected"
	EventCallEnded      = "call-ended"
	EventICECandidate   = "ice-candidate"
	EventTyping         = "typing"
	EventStopTyping     = "stop-typing"
)

// Outbound is any frame the relay can push to a client. Name is the
// event type, used for logging; the struct itself carries the matching
// "type" field on the wire.
type Outbound interface {
	Name() string
}

type PresenceUpdate struct {
	Type  string          `json:"type"`
	Users []domain.UserID `json:"users"`
}

func NewPresenceUpdate(users []domain.UserID) PresenceUpdate {
	return PresenceUpdate{Type: EventPresenceUpdate, Users: users}
}

func (e PresenceUpdate) Name() string { return e.Type }

type IncomingCall struct {
	Type  string                    `json:"type"`
	From  domain.UserID             `json:"from"`
	Offer webrtc.SessionDescription `json:"offer"`
	Kind  domain.CallKind           `json:"kind"`
}

func NewIncomingCall(from domain.UserID, offer webrtc.SessionDescription, kind domain.CallKind) IncomingCall {
	return IncomingCall{Type: EventIncomingCall, From: from, Offer: offer, Kind: kind}
}

func (e IncomingCall) Name() string { return e.Type }

type CallAccepted struct {
	Type   string                    `json:"type"`
	From   domain.UserID             `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

func NewCallAccepted(from domain.UserID, answer webrtc.SessionDescription) CallAccepted {
	return CallAccepted{Type: EventCallAccepted, From: from, Answer: answer}
}

func (e CallAccepted) Name() string { return e.Type }

type CallRejected struct {
	Type string `json:"type"`
}

func NewCallRejected() CallRejected {
	return CallRejected{Type: EventCallRejected}
}

func (e CallRejected) Name() string { return e.Type }

type CallEnded struct {
	Type string `json:"type"`
	// HistorySaved tells the receiving side whether the peer already
	// recorded the call outcome, so it must skip a duplicate record.
	HistorySaved bool `json:"historyAlreadySaved"`
}

func NewCallEnded(historySaved bool) CallEnded {
	return CallEnded{Type: EventCallEnded, HistorySaved: historySaved}
}

func (e CallEnded) Name() string { return e.Type }

type ICECandidate struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

func NewICECandidate(candidate webrtc.ICECandidateInit) ICECandidate {
	return ICECandidate{Type: EventICECandidate, Candidate: candidate}
}

func (e ICECandidate) Name() string { return e.Type }

type Typing struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
}

func NewTyping(from domain.UserID) Typing {
	return Typing{Type: EventTyping, From: from}
}

func (e Typing) Name() string { return e.Type }

type StopTyping struct {
	Type string        `json:"type"`
	From domain.UserID `json:"from"`
}

func NewStopTyping(from domain.UserID) StopTyping {
	return StopTyping{Type: EventStopTyping, From: from}
}

func (e StopTyping) Name() string { return e.Type }

// CollaboratorEvent wraps an opaque payload pushed on behalf of an
// external collaborator, e.g. "new-message" after the store persisted
// a chat record.
type CollaboratorEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewCollaboratorEvent(event string, payload json.RawMessage) CollaboratorEvent {
	return CollaboratorEvent{Type: event, Payload: payload}
}

func (e CollaboratorEvent) Name() string { return e.Type }
