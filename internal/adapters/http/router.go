package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pixelgram/signaling/internal/adapters/signal"
	"github.com/pixelgram/signaling/internal/app"
	"github.com/pixelgram/signaling/internal/config"
	"github.com/pixelgram/signaling/internal/domain"
)

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SignalingSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewController(orch, cfg)

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	// Synchronous presence lookups for collaborators that need an
	// online check without holding a WS connection.
	api.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"users": orch.Registry.Online()})
	})
	api.GET("/presence/:id", func(c *gin.Context) {
		uid, err := domain.ParseUserID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"online": orch.Registry.IsOnline(uid)})
	})

	// Relay hook for the persistence collaborator: after it stores a
	// record (chat message, call history) it pushes the resulting event
	// here. Best-effort, exactly like every other relay.
	api.POST("/internal/relay", RelaySecret(cfg.Secret), func(c *gin.Context) {
		var req struct {
			To      string          `json:"to" binding:"required"`
			Event   string          `json:"event" binding:"required"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		uid, err := domain.ParseUserID(req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		online := orch.Relay.Emit(uid, app.NewCollaboratorEvent(req.Event, req.Payload))
		c.JSON(http.StatusOK, gin.H{"online": online})
	})

	return r
}

// RelaySecret gates the internal relay endpoint behind the shared
// secret from config.
func RelaySecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.GetHeader("X-Relay-Secret") != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
