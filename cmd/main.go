// matcha match service
//
// Serves job match scoring, paginated feeds with server-held scroll state,
// profile completion, and the application lifecycle. A cron loop backfills
// Gemini embeddings for new profiles and postings, and a Redis listener
// keeps the profile-complete cache and vectors fresh.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/application"
	"github.com/TomZ28/matcha/internal/config"
	"github.com/TomZ28/matcha/internal/db"
	"github.com/TomZ28/matcha/internal/embedding"
	"github.com/TomZ28/matcha/internal/logger"
	"github.com/TomZ28/matcha/internal/profile"
	"github.com/TomZ28/matcha/internal/scheduler"
	"github.com/TomZ28/matcha/internal/server"
	"github.com/TomZ28/matcha/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zl, err := logger.New(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()
	zl.Info("postgres connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zl.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()
	zl.Info("redis connected")

	st := store.New(pool)
	profiles := profile.NewService(st, rdb, zl)

	// ── Embeddings ───────────────────────────────────────────────────────────
	var refresher *embedding.Refresher
	if cfg.GeminiAPIKey != "" {
		embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			zl.Fatal("gemini client failed", zap.Error(err))
		}
		refresher = embedding.NewRefresher(st, embedder, zl)

		sched := scheduler.New(refresher, zl, cfg.EmbedRefreshHours)
		if err := sched.Start(ctx); err != nil {
			zl.Fatal("scheduler start failed", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		zl.Warn("GEMINI_API_KEY not set; embedding refresh disabled")
	}

	listener := profile.NewListener(rdb, profiles, refresher, zl)
	go listener.Run(ctx)

	// ── HTTP server ──────────────────────────────────────────────────────────
	apps := application.NewHandler(application.NewService(st, rdb, zl), cfg.FeedPageSize, zl)
	sessions := server.NewSessions(time.Duration(cfg.FeedSessionTTLMinutes)*time.Minute, zl)
	go sessions.Sweep(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.New(st, profiles, apps, sessions, cfg.FeedPageSize, zl).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("http server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("http server error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown error", zap.Error(err))
	}
	zl.Info("stopped")
}
