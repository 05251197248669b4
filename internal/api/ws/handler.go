// Package ws exposes the generation pipeline over a WebSocket for
// clients that want bidirectional streaming instead of NDJSON.
package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/APIForge/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/APIForge/backend/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // generated endpoints are consumed cross-origin
	},
}

// Handler manages WebSocket generation sessions.
type Handler struct {
	pipeline *pipeline.Pipeline
	logger   *logging.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(p *pipeline.Pipeline, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{pipeline: p, logger: logger}
}

type message struct {
	Type      string `json:"type"`
	pipeline.Request
}

// HandleConnection upgrades the connection and serves generation
// requests until the client goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var mu sync.Mutex
	send := func(v any) error {
		mu.Lock()
		defer mu.Unlock()
		return conn.WriteJSON(v)
	}

	reqCtx := c.Request.Context()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "generate":
			_ = h.pipeline.Run(reqCtx, msg.Request, func(e pipeline.Event) {
				_ = send(e)
			})
		case "ping":
			_ = send(gin.H{"type": "pong"})
		default:
			_ = send(pipeline.Event{Type: pipeline.EventError, Error: "unknown message type"})
		}
	}
}
