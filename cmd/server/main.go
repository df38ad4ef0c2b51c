package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/liveblog-comb/app/api"
	"github.com/lysyi3m/liveblog-comb/app/cache"
	"github.com/lysyi3m/liveblog-comb/app/cfg"
	"github.com/lysyi3m/liveblog-comb/app/database"
	"github.com/lysyi3m/liveblog-comb/app/feed"
	"github.com/lysyi3m/liveblog-comb/app/snapshot"
	"github.com/lysyi3m/liveblog-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Liveblog Comb server", "version", appCfg.Version, "store", appCfg.StoreBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStore(ctx, appCfg)
	cancel()
	if err != nil {
		slog.Error("Failed to open store", "backend", appCfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var health api.HealthChecker
	if checker, ok := store.(api.HealthChecker); ok {
		health = checker
	}

	if appCfg.SnapshotPath != "" {
		files, err := snapshot.NewFileStore(appCfg.SnapshotPath)
		if err != nil {
			slog.Error("Failed to open snapshot file", "path", appCfg.SnapshotPath, "error", err)
			os.Exit(1)
		}
		store = snapshot.Combine(store, files)
		slog.Info("Snapshots kept in file", "path", appCfg.SnapshotPath)
	}

	settingsCache := feed.NewSettingsCache(appCfg.SettingsPath)
	if err := settingsCache.Run(); err != nil {
		slog.Error("Failed to load settings", "path", appCfg.SettingsPath, "error", err)
		os.Exit(1)
	}

	parser := feed.NewParser(feed.ParserConfig{
		Timestamps:  store,
		Pinned:      store,
		Snapshots:   store,
		Settings:    settingsCache,
		AuthorsPath: appCfg.AuthorsPath,
	})

	current := feed.NewCurrent()
	if state, err := store.LoadSnapshot(context.Background()); err == nil {
		current.Set(state, "")
		slog.Info("Serving last snapshot until the first parse", "status", state.Status, "posts", len(state.Posts))
	}

	memo, err := tasks.NewMemo(appCfg.MemoSize, time.Duration(appCfg.SchedulerInterval)*time.Second)
	if err != nil {
		slog.Error("Failed to create parse memo", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval, "document", appCfg.DocumentSource)
	scheduler := tasks.NewScheduler(settingsCache, parser, current, memo, httpClient)
	scheduler.Start()

	apiHandler := api.NewHandler(settingsCache, current, scheduler, health)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	scheduler.Stop()
	slog.Info("Background scheduler stopped")

	slog.Info("Liveblog Comb server shutdown complete")
}

func openStore(ctx context.Context, appCfg *cfg.Cfg) (feed.Store, error) {
	switch appCfg.StoreBackend {
	case "sqlite":
		return database.OpenSQLiteStore(appCfg.SQLitePath)
	case "redis":
		return cache.NewRedisStore(ctx, cache.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
	case "mongo":
		return database.NewMongoStore(ctx, appCfg.MongoURL, appCfg.MongoDatabase)
	case "memory":
		slog.Warn("Using in-memory store: timestamps and snapshots are lost on restart")
		return database.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", appCfg.StoreBackend)
	}
}
