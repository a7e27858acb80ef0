package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/config"
	"github.com/vanluestetica/vanlu-backend/internal/handler"
	"github.com/vanluestetica/vanlu-backend/internal/logger"
	"github.com/vanluestetica/vanlu-backend/internal/model/catalog"
	"github.com/vanluestetica/vanlu-backend/internal/observability"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	analyticsService "github.com/vanluestetica/vanlu-backend/internal/service/analytics"
	"github.com/vanluestetica/vanlu-backend/internal/service/competitor"
	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	metrics := observability.NewMetrics("vanlu")
	store := session.NewStore(cfg.Session.TTL, zlog)
	serviceCatalog := catalog.New()

	// The agent capability is optional: without Ark credentials the API
	// still serves sessions, catalog, analytics and admin endpoints.
	var responder agent.StreamingResponder
	if cfg.AI.Enabled() {
		arkResponder, err := agent.NewArkResponder(ctx, cfg.AI)
		if err != nil {
			zlog.Warn("agent initialization failed, chat endpoints will be unavailable", zap.Error(err))
		} else {
			responder = arkResponder
			zlog.Info("agent service initialized", zap.String("model", cfg.AI.Model))
		}
	} else {
		zlog.Warn("ark credentials not configured, chat endpoints will be unavailable")
	}

	agentSvc := agent.NewService(store, responder, nil, cfg.AI.Timeout, zlog)
	searchSvc := search.New(cfg.Search, zlog)
	scrapeSvc := scrape.New(cfg.Scrape, zlog)
	competitorSvc := competitor.New(searchSvc, scrapeSvc, zlog)
	analyticsSvc := analyticsService.New(store)

	router := handler.NewRouter(handler.Dependencies{
		AgentSvc:      agentSvc,
		Responder:     responder,
		SearchSvc:     searchSvc,
		ScrapeSvc:     scrapeSvc,
		CompetitorSvc: competitorSvc,
		AnalyticsSvc:  analyticsSvc,
		Catalog:       serviceCatalog,
		Metrics:       metrics,
		Logger:        zlog,
	})

	startServer(ctx, cfg.Server, router, zlog)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zlog.Info("vanlu backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
