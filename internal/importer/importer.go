// Package importer copies sheet observations into the Postgres store.
package importer

import (
	"context"
	"fmt"

	"github.com/kjannette/avaline-backend/internal/models"
)

type Source interface {
	FetchObservations(ctx context.Context) ([]models.Observation, error)
}

type Sink interface {
	FetchObservations(ctx context.Context) ([]models.Observation, error)
	Record(ctx context.Context, o models.Observation) (int64, error)
}

type Result struct {
	Fetched  int
	Imported int
	Skipped  int
}

// Run records every source observation the sink does not already hold.
// Observations are matched on all four fields, so running it twice imports
// nothing the second time.
func Run(ctx context.Context, src Source, dst Sink) (Result, error) {
	incoming, err := src.FetchObservations(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch source: %w", err)
	}
	existing, err := dst.FetchObservations(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch existing: %w", err)
	}

	seen := make(map[models.Observation]int, len(existing))
	for _, o := range existing {
		seen[o]++
	}

	res := Result{Fetched: len(incoming)}
	for _, o := range incoming {
		if seen[o] > 0 {
			seen[o]--
			res.Skipped++
			continue
		}
		if _, err := dst.Record(ctx, o); err != nil {
			return res, fmt.Errorf("record %s %s: %w", o.Vendor, o.Timestamp, err)
		}
		res.Imported++
	}

	fmt.Printf("[IMPORT] %d fetched, %d imported, %d already present\n", res.Fetched, res.Imported, res.Skipped)
	return res, nil
}
