package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/newagedev/animalcompare/internal/api"
	"github.com/newagedev/animalcompare/internal/compare"
	"github.com/newagedev/animalcompare/internal/config"
	"github.com/newagedev/animalcompare/internal/engine"
	"github.com/newagedev/animalcompare/internal/source"
	"github.com/newagedev/animalcompare/internal/store"
)

func main() {
	// Optional .env for local development; absence is fine.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	setupLogging(cfg.LogLevel)

	// Open SQLite.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// Initialize store.
	s, err := store.New(db)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	// Source adapters per category, and the pipeline that drives them.
	registry := buildRegistry(cfg)

	var prefetcher engine.Prefetcher = engine.NopPrefetcher{}
	if cfg.PrefetchEnabled {
		prefetcher = engine.NewHTTPPrefetcher(&http.Client{Timeout: cfg.HTTPTimeout})
	}

	pipeline := engine.NewPipeline(s, registry, prefetcher, engine.Options{
		LoadAmount:        cfg.LoadAmount,
		AttemptCap:        cfg.AttemptCap,
		RecycleBase:       cfg.RecycleBase,
		RecycleMinCatalog: cfg.RecycleMinCatalog,
		RecycleMaxCatalog: cfg.RecycleMaxCatalog,
	})

	// One replenishment controller per category, for the process lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	for _, cat := range registry.Categories() {
		ctrl := engine.NewController(cat, pipeline, s.Notifier().Subscribe(cat))
		group.Go(func() error {
			return ctrl.Run(groupCtx)
		})
	}

	// Consumer-facing surface.
	srv := api.New(compare.New(s), cfg.CORSOrigin)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		cancel()
		httpServer.Shutdown(context.Background())
	}()

	fmt.Printf("animalcompare server listening on http://localhost:%s\n", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	// In-flight replenishment work is transactional, so it either lands
	// whole or not at all; waiting for it is cheap.
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("controller exited", "error", err)
	}
}

func buildRegistry(cfg config.Config) *source.Registry {
	if cfg.OfflineSources {
		slog.Warn("offline mode: serving stub animal sources")
		return source.NewStubRegistry()
	}
	return source.NewRegistry(cfg.HTTPTimeout, cfg.MaxFileSize)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
