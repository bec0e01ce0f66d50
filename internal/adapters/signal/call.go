package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/domain"
)

// Who is caller and who is callee is fixed by which handler fired on
// whose connection; the "from" some clients put in payloads is never
// trusted.

func (ctl *Controller) handleCallInitiate(uid domain.UserID, c *WsSignalConn, data []byte) {
	var p struct {
		Type  string                    `json:"type"`
		To    string                    `json:"to"`
		Offer webrtc.SessionDescription `json:"offer"`
		Kind  string                    `json:"kind"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad call-initiate payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	to, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	kind, err := domain.ParseCallKind(p.Kind)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Offer.SDP == "" {
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Orch.Calls.Initiate(uid, to, kind, p.Offer)
}

func (ctl *Controller) handleCallAccept(uid domain.UserID, c *WsSignalConn, data []byte) {
	var p struct {
		Type   string                    `json:"type"`
		To     string                    `json:"to"`
		Answer webrtc.SessionDescription `json:"answer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad call-accept payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	caller, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Answer.SDP == "" {
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Orch.Calls.Accept(uid, caller, p.Answer)
}

func (ctl *Controller) handleCallReject(uid domain.UserID, c *WsSignalConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad call-reject payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	caller, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Orch.Calls.Reject(uid, caller)
}

func (ctl *Controller) handleCallEnd(uid domain.UserID, c *WsSignalConn, data []byte) {
	var p struct {
		Type         string `json:"type"`
		To           string `json:"to"`
		HistorySaved bool   `json:"historyAlreadySaved"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad call-end payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	other, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Orch.Calls.End(uid, other, p.HistorySaved)
}

func (ctl *Controller) handleCandidate(uid domain.UserID, c *WsSignalConn, data []byte) {
	var p struct {
		Type      string                  `json:"type"`
		To        string                  `json:"to"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad ice-candidate payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	to, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Candidate.Candidate == "" {
		ctl.sendError(c, "bad_payload")
		return
	}

	ctl.Orch.Calls.Candidate(uid, to, p.Candidate)
}
