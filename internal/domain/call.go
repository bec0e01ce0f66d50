package domain

import "errors"

var ErrUnknownCallKind = errors.New("unknown call kind")

// CallKind distinguishes audio-only from video calls. Values are part
// of the wire protocol, keep them stable.
type CallKind string

const (
	CallKindAudio CallKind = "audio"
	CallKindVideo CallKind = "video"
)

func ParseCallKind(raw string) (CallKind, error) {
	switch CallKind(raw) {
	case CallKindAudio, CallKindVideo:
		return CallKind(raw), nil
	}
	return "", ErrUnknownCallKind
}

// CallState is the lifecycle state of one call attempt.
type CallState string

const (
	// CallStateOffering: the offer exists but has not reached the callee yet.
	CallStateOffering CallState = "offering"
	// CallStateRinging: the offer was delivered, waiting on accept/reject.
	CallStateRinging  CallState = "ringing"
	CallStateAccepted CallState = "accepted"
	CallStateEnded    CallState = "ended"
	CallStateRejected CallState = "rejected"
)

func (s CallState) Terminal() bool {
	return s == CallStateEnded || s == CallStateRejected
}

// CallOutcome classifies a torn-down call for whoever records history.
type CallOutcome string

const (
	CallOutcomeCompleted CallOutcome = "completed"
	CallOutcomeMissed    CallOutcome = "missed"
)
