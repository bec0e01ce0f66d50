package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/core"
	"github.com/pixelgram/signaling/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, uid domain.UserID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(uid)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(uid, c)
		if uid != "" {
			ctl.Limiter.Forget(uid)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(uid, c, data)
		}
	}
}

// dispatch routes one inbound frame. Every failure mode here rejects
// the single frame and leaves registry and sessions untouched.
func (ctl *Controller) dispatch(uid domain.UserID, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	if env.Type == "ping" {
		ctl.handlePing(c)
		return
	}

	// Anonymous connections cannot address anyone.
	if uid == "" {
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("frame from unauthenticated connection, dropped")
		return
	}
	if !ctl.Limiter.Allow(uid) {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Str("type", env.Type).Msg("rate limited, dropped")
		return
	}

	switch env.Type {
	case "call-initiate":
		ctl.handleCallInitiate(uid, c, data)
	case "call-accept":
		ctl.handleCallAccept(uid, c, data)
	case "call-reject":
		ctl.handleCallReject(uid, c, data)
	case "call-end":
		ctl.handleCallEnd(uid, c, data)
	case "ice-candidate":
		ctl.handleCandidate(uid, c, data)
	case "typing":
		ctl.handleTyping(uid, c, data)
	case "stop-typing":
		ctl.handleStopTyping(uid, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(core.Frame(b))
}

func (ctl *Controller) sendError(c *WsSignalConn, reason string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": reason,
	})
}

func (ctl *Controller) handlePing(c *WsSignalConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: "pong"})
}
