// Package database persists formation orders in Postgres.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/models"
)

// upsertOrder keys on tx_ref so a retried save never creates a second order.
// A paid order never moves back to pending, and a transaction id, once
// known, is kept.
const upsertOrder = `
INSERT INTO orders(tx_ref, status, amount_cents, customer_email, suppress_emails, transaction_id, snapshot)
VALUES($1, $2, $3, $4, $5, NULLIF($6, ''), $7::jsonb)
ON CONFLICT (tx_ref) DO UPDATE SET
	status = CASE WHEN orders.status = 'paid' THEN orders.status ELSE EXCLUDED.status END,
	amount_cents = EXCLUDED.amount_cents,
	customer_email = EXCLUDED.customer_email,
	suppress_emails = CASE WHEN orders.status = 'paid' THEN orders.suppress_emails ELSE EXCLUDED.suppress_emails END,
	transaction_id = COALESCE(EXCLUDED.transaction_id, orders.transaction_id),
	snapshot = EXCLUDED.snapshot,
	updated_at = now()
RETURNING id, tx_ref, status, amount_cents, customer_email, suppress_emails,
	COALESCE(transaction_id, ''), snapshot::text, created_at, updated_at`

const selectOrder = `
SELECT id, tx_ref, status, amount_cents, customer_email, suppress_emails,
	COALESCE(transaction_id, ''), snapshot::text, created_at, updated_at
FROM orders WHERE tx_ref = $1`

// Postgres implements order persistence over a pgx pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{Pool: pool}
}

func (p *Postgres) SaveOrder(ctx context.Context, req models.SaveOrderRequest) (models.SavedOrder, error) {
	if req.TxRef == "" {
		return models.SavedOrder{}, fmt.Errorf("save order: tx_ref is required")
	}
	snap, err := json.Marshal(req.Snapshot)
	if err != nil {
		return models.SavedOrder{}, fmt.Errorf("save order: encode snapshot: %w", err)
	}
	row := p.Pool.QueryRow(ctx, upsertOrder,
		req.TxRef, string(req.Status), req.AmountCents, req.Snapshot.CustomerEmail(),
		req.SuppressEmails, req.TransactionID, string(snap))
	o, err := scanOrder(row)
	if err != nil {
		return models.SavedOrder{}, fmt.Errorf("save order %s: %w", req.TxRef, err)
	}
	return o, nil
}

func (p *Postgres) GetOrder(ctx context.Context, txRef string) (models.SavedOrder, error) {
	o, err := scanOrder(p.Pool.QueryRow(ctx, selectOrder, txRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SavedOrder{}, apperrors.New(apperrors.CodeNotFound, "Order not found")
	}
	if err != nil {
		return models.SavedOrder{}, fmt.Errorf("get order %s: %w", txRef, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (models.SavedOrder, error) {
	var o models.SavedOrder
	var status, snap string
	err := row.Scan(&o.ID, &o.TxRef, &status, &o.AmountCents, &o.CustomerEmail, &o.SuppressEmails,
		&o.TransactionID, &snap, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal([]byte(snap), &o.Snapshot); err != nil {
		return o, fmt.Errorf("decode snapshot: %w", err)
	}
	return o, nil
}
