// Package stream serves chat replies over Server-Sent Events.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

// Handler streams one chat turn chunk by chunk.
type Handler struct {
	agentSvc  *agent.Service
	responder agent.StreamingResponder
	logger    *zap.Logger
}

// New creates the stream handler. responder is the same capability the
// orchestrator uses, exposed here for its chunked interface.
func New(agentSvc *agent.Service, responder agent.StreamingResponder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{agentSvc: agentSvc, responder: responder, logger: logger}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs one streamed chat turn: the customer message
// is appended, the reply streams out as delta frames, and the completed
// turn lands in the transcript like a regular chat call.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	store := h.agentSvc.Store()
	sess := store.GetOrCreate(sessionID)

	if _, err := store.AppendMessage(sess.ID, chat.RoleCustomer, userMessage); err != nil {
		h.sendError(w, flusher, "failed to record message")
		return err
	}

	transcript, err := store.Transcript(sess.ID)
	if err != nil {
		h.sendError(w, flusher, "failed to load conversation")
		return err
	}

	h.send(w, flusher, StreamResponse{Event: "start", SessionID: sess.ID})

	reply, err := h.streamReply(ctx, w, flusher, sess.ID, transcript)
	if err != nil {
		h.sendError(w, flusher, fmt.Sprintf("agent generation failed: %v", err))
		return err
	}

	result, err := h.agentSvc.FinishTurn(sess.ID, userMessage, reply)
	if err != nil {
		h.sendError(w, flusher, "failed to record reply")
		return err
	}

	h.send(w, flusher, StreamResponse{Event: "message", SessionID: sess.ID, Content: reply})
	h.send(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sess.ID,
		Content:   string(result.NextAction),
		Finished:  true,
	})

	h.logger.Info("streamed chat turn completed",
		zap.String("session_id", sess.ID),
		zap.String("intent", string(result.Intent)))
	return nil
}

func (h *Handler) streamReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID string, transcript []chat.Message) (string, error) {
	stream, err := h.responder.Stream(ctx, transcript)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.send(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	merged, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return merged.Content, nil
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendError(w http.ResponseWriter, flusher http.Flusher, message string) {
	h.send(w, flusher, StreamResponse{Event: "error", Error: message})
}
