package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/avaline-backend/internal/api"
	"github.com/kjannette/avaline-backend/internal/cache"
	"github.com/kjannette/avaline-backend/internal/config"
	"github.com/kjannette/avaline-backend/internal/db"
	"github.com/kjannette/avaline-backend/internal/external"
	"github.com/kjannette/avaline-backend/internal/notifications"
	"github.com/kjannette/avaline-backend/internal/reply"
	"github.com/kjannette/avaline-backend/internal/repository"
	"github.com/kjannette/avaline-backend/internal/scheduler"
	"github.com/kjannette/avaline-backend/internal/sheets"
)

const banner = `
╔══════════════════════════════════════╗
║     Avaline Ticket Price Tracker     ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		source      api.ObservationSource
		subscribers api.SubscriberStore
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err := db.Connect(ctx, cfg.DSN())
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			pool.Close()
			fmt.Println("[DB] Connection pool closed")
		}()

		if err := db.Migrate(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
			os.Exit(1)
		}
		source = repository.NewObservationRepo(pool)
		subscribers = repository.NewSubscriberRepo(pool)

	default:
		store, err := sheets.NewServiceAccountStore(ctx, cfg.GoogleClientEmail, cfg.GooglePrivateKey, sheets.Options{
			SheetID:         cfg.SheetID,
			PriceRange:      cfg.SheetRange,
			SubscriberRange: cfg.SubscriberSheetRange,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "[SHEETS] Setup failed: %v\n", err)
			os.Exit(1)
		}
		source = store
		subscribers = store
	}

	// Optional observation cache
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			fmt.Printf("[CACHE] Redis unavailable, serving uncached: %v\n", err)
		} else {
			oc := cache.NewObservationCache(source, rdb, cfg.CacheTTL())
			defer oc.Close()
			source = oc
			fmt.Printf("[CACHE] Caching observations for %s\n", cfg.CacheTTL())
		}
	}

	// Replies
	var gen reply.TextGenerator
	if cfg.OpenAIAPIKey != "" {
		gen = external.NewOpenAIClient(cfg.OpenAIAPIKey, external.OpenAIOptions{
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
	}
	composer := reply.NewComposer(gen, cfg.EventName, cfg.Thresholds())

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// 1. API server
	srv := api.NewServer(api.Deps{
		Source:      source,
		Subscribers: subscribers,
		Composer:    composer,
		Thresholds:  cfg.Thresholds(),
	}, cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Price-drop alerts
	alerts := scheduler.NewAlertScheduler(source, notify, scheduler.AlertSchedulerConfig{
		Interval:   cfg.AlertInterval(),
		EventName:  cfg.EventName,
		Thresholds: cfg.Thresholds(),
	})
	alerts.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	alerts.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
