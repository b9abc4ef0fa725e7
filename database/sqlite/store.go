// Package sqlite persists formation orders in a single SQLite file. It backs
// local runs and tests with the same upsert semantics as the Postgres store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"formationdesk/backend/apperrors"
	"formationdesk/backend/database/sqlite/migrations"
	"formationdesk/backend/models"
)

const upsertOrder = `
INSERT INTO orders(tx_ref, status, amount_cents, customer_email, suppress_emails, transaction_id, snapshot, created_at, updated_at)
VALUES(?1, ?2, ?3, ?4, ?5, NULLIF(?6, ''), ?7, ?8, ?8)
ON CONFLICT(tx_ref) DO UPDATE SET
	status = CASE WHEN orders.status = 'paid' THEN orders.status ELSE excluded.status END,
	amount_cents = excluded.amount_cents,
	customer_email = excluded.customer_email,
	suppress_emails = CASE WHEN orders.status = 'paid' THEN orders.suppress_emails ELSE excluded.suppress_emails END,
	transaction_id = COALESCE(excluded.transaction_id, orders.transaction_id),
	snapshot = excluded.snapshot,
	updated_at = excluded.updated_at`

const selectOrder = `
SELECT id, tx_ref, status, amount_cents, customer_email, suppress_emails,
	COALESCE(transaction_id, ''), snapshot, created_at, updated_at
FROM orders WHERE tx_ref = ?1`

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Store implements order persistence over SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) SaveOrder(ctx context.Context, req models.SaveOrderRequest) (models.SavedOrder, error) {
	if req.TxRef == "" {
		return models.SavedOrder{}, fmt.Errorf("save order: tx_ref is required")
	}
	snap, err := json.Marshal(req.Snapshot)
	if err != nil {
		return models.SavedOrder{}, fmt.Errorf("save order: encode snapshot: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, upsertOrder,
		req.TxRef, string(req.Status), req.AmountCents, req.Snapshot.CustomerEmail(),
		req.SuppressEmails, req.TransactionID, string(snap), toMillis(s.now()))
	if err != nil {
		return models.SavedOrder{}, fmt.Errorf("save order %s: %w", req.TxRef, err)
	}
	return s.GetOrder(ctx, req.TxRef)
}

func (s *Store) GetOrder(ctx context.Context, txRef string) (models.SavedOrder, error) {
	var o models.SavedOrder
	var status, snap string
	var created, updated int64
	err := s.sqlDB.QueryRowContext(ctx, selectOrder, txRef).Scan(&o.ID, &o.TxRef, &status, &o.AmountCents,
		&o.CustomerEmail, &o.SuppressEmails, &o.TransactionID, &snap, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return o, apperrors.New(apperrors.CodeNotFound, "Order not found")
	}
	if err != nil {
		return o, fmt.Errorf("get order %s: %w", txRef, err)
	}
	o.Status = models.OrderStatus(status)
	o.CreatedAt = fromMillis(created)
	o.UpdatedAt = fromMillis(updated)
	if err := json.Unmarshal([]byte(snap), &o.Snapshot); err != nil {
		return o, fmt.Errorf("decode snapshot: %w", err)
	}
	return o, nil
}

// CountOrders returns the number of stored orders.
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
