package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		tx_ref TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		customer_email TEXT NOT NULL,
		suppress_emails BOOLEAN NOT NULL DEFAULT TRUE,
		transaction_id TEXT NULL,
		snapshot JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_email_idx ON orders(customer_email)`,
	`CREATE INDEX IF NOT EXISTS orders_status_created_idx ON orders(status, created_at DESC)`,
}

// EnsureSchema creates the order tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range schema {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
