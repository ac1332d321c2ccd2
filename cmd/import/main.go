package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kjannette/avaline-backend/internal/config"
	"github.com/kjannette/avaline-backend/internal/db"
	"github.com/kjannette/avaline-backend/internal/importer"
	"github.com/kjannette/avaline-backend/internal/repository"
	"github.com/kjannette/avaline-backend/internal/sheets"
)

// Copies the price sheet into Postgres so the server can run with
// STORE_BACKEND=postgres. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	// Both stores are needed regardless of STORE_BACKEND.
	sheetCfg, dbCfg := *cfg, *cfg
	sheetCfg.StoreBackend = config.BackendSheets
	dbCfg.StoreBackend = config.BackendPostgres
	for _, c := range []*config.Config{&sheetCfg, &dbCfg} {
		if err := c.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sheets.NewServiceAccountStore(ctx, cfg.GoogleClientEmail, cfg.GooglePrivateKey, sheets.Options{
		SheetID:    cfg.SheetID,
		PriceRange: cfg.SheetRange,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[SHEETS] Setup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}

	if _, err := importer.Run(ctx, store, repository.NewObservationRepo(pool)); err != nil {
		fmt.Fprintf(os.Stderr, "[IMPORT] Failed: %v\n", err)
		pool.Close()
		os.Exit(1)
	}
}
