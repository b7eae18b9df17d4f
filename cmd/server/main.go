package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"market-search/internal/api"
	"market-search/internal/availability"
	"market-search/internal/cache"
	"market-search/internal/catalog"
	"market-search/internal/config"
	"market-search/internal/db"
	"market-search/internal/filter"
	"market-search/internal/upstream"
	"market-search/internal/wishlist"
)

func main() {
	// Flags override environment configuration
	port := flag.Int("port", 0, "Port to listen on (overrides PORT)")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides DB_PATH)")
	upstreamURL := flag.String("upstream", "", "Upstream backend base URL (overrides UPSTREAM_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *upstreamURL != "" {
		cfg.UpstreamURL = *upstreamURL
	}

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Storage
	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	// Response cache: Redis when configured, no-op otherwise
	var respCache cache.Cache
	if cfg.RedisAddr != "" {
		respCache, err = cache.NewRedisCache(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		log.Info("response cache enabled", "addr", cfg.RedisAddr)
	} else {
		respCache = cache.NewNoOpCache()
	}
	defer respCache.Close()

	// Pipeline wiring
	client := upstream.New(cfg.UpstreamURL, log)
	wl := wishlist.New(database, client, log)
	wl.Load(ctx)

	checker := availability.New(database, log)
	engine := filter.New(checker)
	cat := catalog.New(client, database, wl, engine, respCache, log)

	// Initial fill: upstream first, persisted snapshot as fallback
	if err := cat.Refresh(ctx); err != nil {
		if err := cat.LoadFromSnapshot(ctx); err != nil {
			log.Warn("starting with empty catalog", "error", err)
		}
	}

	go cat.Run(ctx, cfg.RefreshInterval)

	// HTTP server
	handlers := api.NewHandlers(cat, wl, database, respCache, log)
	router := api.NewRouter(handlers, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "upstream", cfg.UpstreamURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
