package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	adminHandler "github.com/vanluestetica/vanlu-backend/internal/handler/admin"
	analyticsHandler "github.com/vanluestetica/vanlu-backend/internal/handler/analytics"
	chatHandler "github.com/vanluestetica/vanlu-backend/internal/handler/chat"
	scrapingHandler "github.com/vanluestetica/vanlu-backend/internal/handler/scraping"
	"github.com/vanluestetica/vanlu-backend/internal/handler/stream"
	middlewarePkg "github.com/vanluestetica/vanlu-backend/internal/middleware"
	"github.com/vanluestetica/vanlu-backend/internal/model/catalog"
	"github.com/vanluestetica/vanlu-backend/internal/observability"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	analyticsService "github.com/vanluestetica/vanlu-backend/internal/service/analytics"
	"github.com/vanluestetica/vanlu-backend/internal/service/competitor"
	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

// Dependencies collects everything the HTTP surface needs.
type Dependencies struct {
	AgentSvc      *agent.Service
	Responder     agent.StreamingResponder
	SearchSvc     *search.Service
	ScrapeSvc     *scrape.Service
	CompetitorSvc *competitor.Service
	AnalyticsSvc  *analyticsService.Service
	Catalog       *catalog.Catalog
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(deps.AgentSvc, deps.Catalog, deps.Metrics, deps.Logger)
	wsH := chatHandler.NewWebSocketHandler(deps.AgentSvc, deps.Logger)
	scrapingH := scrapingHandler.New(deps.ScrapeSvc, deps.CompetitorSvc, deps.Logger)
	analyticsH := analyticsHandler.New(deps.AnalyticsSvc)
	adminH := adminHandler.New(deps.AgentSvc, deps.SearchSvc, deps.ScrapeSvc, deps.Metrics, deps.Logger)

	var streamH *stream.Handler
	if deps.Responder != nil && deps.Responder.StreamingEnabled() {
		streamH = stream.New(deps.AgentSvc, deps.Responder, deps.Logger)
	}

	r.Route("/api/v1", func(api chi.Router) {
		chatH.RegisterRoutes(api)
		wsH.RegisterRoutes(api)
		scrapingH.RegisterRoutes(api)
		analyticsH.RegisterRoutes(api)
		adminH.RegisterRoutes(api)

		api.Get("/chat/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if streamH == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "agent streaming unavailable")
				return
			}
			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				deps.Logger.Error("stream request failed", zap.Error(err))
			}
		})
	})

	r.Handle("/metrics", observability.MetricsHandler())

	return r
}
