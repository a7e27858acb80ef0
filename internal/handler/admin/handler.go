// Package admin exposes health, manual cleanup and system stats.
package admin

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/observability"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

const version = "1.0.0"

// Handler serves the /admin route group.
type Handler struct {
	agentSvc  *agent.Service
	searchSvc *search.Service
	scrapeSvc *scrape.Service
	metrics   *observability.Metrics
	logger    *zap.Logger
	startedAt time.Time
}

// New creates the admin handler. startedAt anchors the uptime report.
func New(agentSvc *agent.Service, searchSvc *search.Service, scrapeSvc *scrape.Service, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		agentSvc:  agentSvc,
		searchSvc: searchSvc,
		scrapeSvc: scrapeSvc,
		metrics:   metrics,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// RegisterRoutes mounts the admin route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/health", h.handleHealth)
	r.Post("/admin/cleanup", h.handleCleanup)
	r.Get("/admin/stats", h.handleStats)
}

func statusOf(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"agent":    statusOf(h.agentSvc.Available()),
		"search":   statusOf(h.searchSvc.Configured()),
		"scraping": statusOf(h.scrapeSvc.Configured()),
	}

	overall := "healthy"
	for _, status := range services {
		if status != "running" {
			overall = "degraded"
			break
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   overall,
		"version":  version,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"services": services,
	})
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed := h.agentSvc.Store().SweepExpired(0)
	if h.metrics != nil {
		h.metrics.SessionsSwept.Add(float64(removed))
		h.metrics.ActiveSessions.Set(float64(h.agentSvc.Store().Len()))
	}

	h.logger.Info("manual cleanup completed", zap.Int("removed", removed))

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Cleanup completed successfully",
		"sessions_removed": removed,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions := h.agentSvc.Store().All()

	totalMessages := 0
	for _, sess := range sessions {
		totalMessages += sess.MessageCount()
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"total_sessions": len(sessions),
		"total_messages": totalMessages,
		"version":        version,
	})
}
