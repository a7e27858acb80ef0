package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
)

// WebSocketHandler keeps one conversation open over a websocket so the
// web widget avoids per-turn HTTP round trips.
type WebSocketHandler struct {
	agentSvc *agent.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket chat handler.
func NewWebSocketHandler(agentSvc *agent.Service, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		agentSvc: agentSvc,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type wsInbound struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type wsOutbound struct {
	Type      string            `json:"type"`
	Result    *agent.ChatResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

const (
	readDeadline = 120 * time.Second
	pingInterval = 54 * time.Second
)

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.agentSvc.Available() {
		http.Error(w, "agent service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	h.logger.Info("websocket chat connected", zap.String("remote", r.RemoteAddr))

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	go h.pingLoop(ctx, conn)

	// The session id travels with every frame; the first frame with an
	// empty id starts a new conversation and the reply carries the
	// assigned id back.
	for {
		var msg wsInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readDeadline))

		if msg.Message == "" || len(msg.Message) > maxMessageLength {
			h.sendError(conn, "message must be between 1 and 1000 characters")
			continue
		}

		result, err := h.agentSvc.Chat(ctx, msg.Message, msg.SessionID)
		if err != nil {
			h.sendError(conn, "agent failed to produce a reply")
			continue
		}

		h.send(conn, wsOutbound{Type: "reply", Result: &result, Timestamp: time.Now().Unix()})
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg wsOutbound) {
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, wsOutbound{Type: "error", Error: message, Timestamp: time.Now().Unix()})
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
