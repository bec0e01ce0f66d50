package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/domain"
)

func (ctl *Controller) handleTyping(uid domain.UserID, c *WsSignalConn, data []byte) {
	to, ok := ctl.parseTypingTarget(c, data)
	if !ok {
		return
	}
	ctl.Orch.Typing.Keystroke(uid, to)
}

func (ctl *Controller) handleStopTyping(uid domain.UserID, c *WsSignalConn, data []byte) {
	to, ok := ctl.parseTypingTarget(c, data)
	if !ok {
		return
	}
	ctl.Orch.Typing.Stop(uid, to)
}

func (ctl *Controller) parseTypingTarget(c *WsSignalConn, data []byte) (domain.UserID, bool) {
	var p struct {
		Type string `json:"type"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad typing payload")
		ctl.sendError(c, "bad_payload")
		return "", false
	}
	to, err := domain.ParseUserID(p.To)
	if err != nil {
		ctl.sendError(c, "bad_payload")
		return "", false
	}
	return to, true
}
