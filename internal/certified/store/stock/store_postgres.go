package stock

import (
	"context"
	"database/sql"
	"fmt"

	"chequeprint/pkg/platform/sentinel"
	"chequeprint/pkg/platform/tx"
)

// PostgresStore keeps the pool in the single certified_stock row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Available(ctx context.Context) (int64, error) {
	var q int64
	if err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT quantity FROM certified_stock WHERE id = 1`,
	).Scan(&q); err != nil {
		return 0, fmt.Errorf("read certified stock: %w", err)
	}
	return q, nil
}

// Deduct decrements only when enough stock remains, so the pool never goes
// negative under concurrent commits.
func (s *PostgresStore) Deduct(ctx context.Context, quantity int64) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE certified_stock
		SET quantity = quantity - $1, updated_at = now()
		WHERE id = 1 AND quantity >= $1
	`, quantity)
	if err != nil {
		return fmt.Errorf("deduct certified stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct certified stock: %w", err)
	}
	if n == 0 {
		return sentinel.ErrInsufficient
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, quantity int64) error {
	if _, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE certified_stock
		SET quantity = quantity + $1, updated_at = now()
		WHERE id = 1
	`, quantity); err != nil {
		return fmt.Errorf("add certified stock: %w", err)
	}
	return nil
}
