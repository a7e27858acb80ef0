// Package analytics exposes the aggregate and per-session statistics.
package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	analyticsService "github.com/vanluestetica/vanlu-backend/internal/service/analytics"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

// Handler serves the /analytics route group.
type Handler struct {
	svc *analyticsService.Service
}

// New creates the analytics handler.
func New(svc *analyticsService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the analytics route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics/conversations", h.handleConversations)
	r.Get("/analytics/sessions/{sessionID}", h.handleSession)
}

func (h *Handler) handleConversations(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.svc.ConversationStats())
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	stats, err := h.svc.SessionStats(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, stats)
}
