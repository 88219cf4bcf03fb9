package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"shopee-dashboard/internal/config"
	"shopee-dashboard/internal/dataset"
	"shopee-dashboard/internal/middleware"
	"shopee-dashboard/internal/observability"
	"shopee-dashboard/internal/server"
	"shopee-dashboard/internal/services"
	"shopee-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: handleDashboard,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"dataset", cfg.Dataset.File,
		"invalid_rows", cfg.Dataset.InvalidRows,
	)

	policy, err := dataset.ParsePolicy(cfg.Dataset.InvalidRows)
	if err != nil {
		logger.Error("invalid dataset policy", "error", err)
		os.Exit(1)
	}
	loader := dataset.NewLoader(policy, logger)
	analytics := services.NewAnalytics(cfg.Analytics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.LoadTimeout)
	start := time.Now()
	err = analytics.LoadFromFile(ctx, loader, cfg.Dataset.File)
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "file", cfg.Dataset.File, "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded", "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
