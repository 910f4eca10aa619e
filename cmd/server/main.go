package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fusion-demo/internal/application/services"
	"fusion-demo/internal/application/usecases"
	"fusion-demo/internal/config"
	domainrepos "fusion-demo/internal/domain/repositories"
	domainservices "fusion-demo/internal/domain/services"
	"fusion-demo/internal/infrastructure/api"
	"fusion-demo/internal/infrastructure/external"
	"fusion-demo/internal/infrastructure/repositories"
	infraservices "fusion-demo/internal/infrastructure/services"
)

// 生成中のリクエストを待つ時間
const shutdownTimeout = 60 * time.Second

type app struct {
	router     http.Handler
	sessions   domainrepos.SessionRepository
	clientPool domainrepos.GenAIClientPool
}

func newApp(cfg *config.Config) *app {
	// Initialize infrastructure layer
	clientPool := infraservices.NewGenAIClientPool(cfg.GeminiAPIKey)
	fusionAIService := external.NewFusionAIService(clientPool)
	sessionRepository := repositories.NewMemorySessionRepository()

	// Initialize domain layer
	fusionDomainService := domainservices.NewFusionDomainService(fusionAIService, cfg.Model)

	// Initialize application layer
	fusionUseCase := usecases.NewFusionUseCase(sessionRepository, fusionDomainService)
	intakeUseCase := usecases.NewIntakeUseCase(sessionRepository, cfg.MaxUploadBytes())
	parameterService := services.NewParameterService()

	// Initialize API layer
	handler := api.NewFusionHandler(fusionUseCase, intakeUseCase, parameterService, api.HandlerConfig{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		SessionTTL:     cfg.SessionTTL,
	})

	return &app{
		router:     api.NewRouter(handler, cfg.StaticDir),
		sessions:   sessionRepository,
		clientPool: clientPool,
	}
}

func (a *app) Close() error {
	return a.clientPool.Close()
}

// pruneSessions は TTL を過ぎたセッションを定期的に捨てる。ctx の終了で戻る。
func (a *app) pruneSessions(ctx context.Context, ttl time.Duration) {
	ticker := time.NewTicker(pruneInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.sessions.Prune(ctx, now.Add(-ttl)); n > 0 {
				slog.Info("pruned idle sessions", "count", n)
			}
		}
	}
}

func pruneInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		return time.Minute
	}
	return interval
}

func main() {
	cfg, err := config.Load(os.Getenv("FUSION_CONFIG"))
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set; fusion requests will fail until it is configured")
	}

	a := newApp(cfg)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.pruneSessions(ctx, cfg.SessionTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.Model, "maxUploadMB", cfg.MaxUploadMB, "sessionTTL", cfg.SessionTTL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
