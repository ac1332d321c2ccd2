package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjannette/avaline-backend/internal/ingest"
	"github.com/kjannette/avaline-backend/internal/models"
)

var ErrInvalidObservation = errors.New("invalid observation")

// ObservationRepo is the Postgres alternative to the price sheet.
type ObservationRepo struct {
	pool *pgxpool.Pool
}

func NewObservationRepo(pool *pgxpool.Pool) *ObservationRepo {
	return &ObservationRepo{pool: pool}
}

func (r *ObservationRepo) Name() string { return "postgres" }

func (r *ObservationRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ObservationRepo) Record(ctx context.Context, o models.Observation) (int64, error) {
	if !ingest.Valid(o) {
		return 0, fmt.Errorf("%w: %+v", ErrInvalidObservation, o)
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO price_observations (vendor, quantity, price, observed_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		o.Vendor, o.Quantity, o.Price, o.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert observation: %w", err)
	}
	return id, nil
}

// FetchObservations returns every valid observation, oldest first. Rows
// that fail the loader rules are skipped.
func (r *ObservationRepo) FetchObservations(ctx context.Context) ([]models.Observation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT vendor, quantity, price, observed_at FROM price_observations ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	obs, err := collectObservations(rows)
	if err != nil {
		return nil, err
	}
	ingest.SortByTimestamp(obs)
	return obs, nil
}

// --- scan helpers ---

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectObservations(rows rowsIter) ([]models.Observation, error) {
	out := []models.Observation{}
	dropped := 0
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Vendor, &o.Quantity, &o.Price, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if !ingest.Valid(o) {
			dropped++
			continue
		}
		out = append(out, o)
	}
	if dropped > 0 {
		fmt.Printf("[DB] Skipped %d malformed observation rows\n", dropped)
	}
	return out, rows.Err()
}
