// Package signal is the WebSocket transport adapter for the signaling
// core: it owns connection upgrade, the read/write pumps and the
// translation of wire frames into core operations.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/app"
	"github.com/pixelgram/signaling/internal/config"
	"github.com/pixelgram/signaling/internal/core"
	"github.com/pixelgram/signaling/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Controller struct {
	Orch    *app.Orchestrator
	Limiter *RateLimiter
	cfg     *config.Config
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:    orch,
		Limiter: NewRateLimiter(cfg.SignalRateLimit, cfg.SignalRateInterval),
		cfg:     cfg,
	}
}

// WsSignalConn implements core.SignalConnection over a WebSocket.
// Owned by the adapter; the write pump drains send, the read pump
// closes everything on exit.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and binds the connection to the
// identity carried in the handshake. A missing userId is accepted but
// stays unaddressable: no registration, no relayed events.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	var uid domain.UserID
	if raw := c.Query("userId"); raw != "" {
		parsed, err := domain.ParseUserID(raw)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("bad userId in handshake")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}
		uid = parsed
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	ctl.Orch.OnConnect(uid, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, uid, conn)
}
