package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/formlab/playground/internal/demo"
	"github.com/formlab/playground/internal/infrastructure/logging"
	"github.com/formlab/playground/internal/infrastructure/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS layer
	},
}

// Message is the envelope for both directions of the stream.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	DemoID    string          `json:"demo_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Content   string          `json:"content,omitempty"`
	Edits     []demo.UnitEdit `json:"edits,omitempty"`
}

// Handler manages WebSocket connections for the live editor. Each
// editor keeps one connection and drives its sessions over it.
type Handler struct {
	sessions *demo.Manager
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *demo.Manager, logger *logging.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		logger:   logger,
	}
}

// WithMetrics attaches a metrics collector
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	if h.metrics != nil {
		h.metrics.RecordWSConnection(1)
		defer h.metrics.RecordWSConnection(-1)
	}
	h.logger.Info("WebSocket connected", zap.String("conn", connID))

	reqCtx := c.Request.Context()

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to Formlab Playground",
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read error", zap.String("conn", connID), zap.Error(err))
			}
			break
		}

		var msg Message
		if err := sonic.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage(msg.Type, "in")
		}

		switch msg.Type {
		case "open":
			h.handleOpen(conn, msg)
		case "run":
			h.handleRun(conn, msg, reqCtx)
		case "update":
			h.handleUpdate(conn, msg)
		case "close":
			h.handleClose(conn, msg)
		case "ping":
			h.send(conn, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}

	h.logger.Info("WebSocket disconnected", zap.String("conn", connID))
}

func (h *Handler) handleOpen(conn *websocket.Conn, msg Message) {
	snapshot, err := h.sessions.Open(msg.DemoID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, map[string]interface{}{
		"type":      "session",
		"session":   snapshot,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleRun(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	snapshot, err := h.sessions.Run(reqCtx, msg.SessionID, msg.Edits)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, map[string]interface{}{
		"type":      "result",
		"session":   snapshot,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleUpdate(conn *websocket.Conn, msg Message) {
	snapshot, err := h.sessions.UpdateSource(msg.SessionID, msg.Name, msg.Content)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.send(conn, map[string]interface{}{
		"type":      "session",
		"session":   snapshot,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) handleClose(conn *websocket.Conn, msg Message) {
	closed := h.sessions.Close(msg.SessionID)

	h.send(conn, map[string]interface{}{
		"type":       "closed",
		"session_id": msg.SessionID,
		"success":    closed,
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	if h.metrics != nil {
		if m, ok := data.(map[string]interface{}); ok {
			if t, ok := m["type"].(string); ok {
				h.metrics.RecordWSMessage(t, "out")
			}
		}
	}
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
