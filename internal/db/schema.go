package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_observations (
	id          BIGSERIAL PRIMARY KEY,
	vendor      TEXT             NOT NULL,
	quantity    INTEGER          NOT NULL,
	price       DOUBLE PRECISION NOT NULL
	            CHECK (price NOT IN ('NaN', 'Infinity', '-Infinity')),
	-- Kept as written so the calendar date is never shifted by a zone.
	observed_at TEXT             NOT NULL,
	created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subscribers (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT        NOT NULL,
	subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
