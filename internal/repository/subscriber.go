package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriberRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepo(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

// AddSubscriber records the email with the current time. Repeat sign-ups
// are kept, matching the sheet store.
func (r *SubscriberRepo) AddSubscriber(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO subscribers (email) VALUES ($1)`, email)
	if err != nil {
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}
