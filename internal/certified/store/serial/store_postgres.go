package serial

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chequeprint/pkg/platform/sentinel"
	"chequeprint/pkg/platform/tx"
)

// PostgresStore keeps one counter row per branch. LockLastSerial and Advance
// must run inside the same transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LastSerial(ctx context.Context, branchID string) (int64, error) {
	var last int64
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT last_serial FROM certified_serial_counters WHERE branch_id = $1`, branchID,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read serial counter: %w", err)
	}
	return last, nil
}

// LockLastSerial creates the branch counter on first use and holds its row
// lock until the surrounding transaction ends.
func (s *PostgresStore) LockLastSerial(ctx context.Context, branchID string) (int64, error) {
	exec, ok := tx.From(ctx)
	if !ok {
		return 0, fmt.Errorf("lock serial counter: %w", errNoTx)
	}
	if _, err := exec.ExecContext(ctx,
		`INSERT INTO certified_serial_counters (branch_id) VALUES ($1) ON CONFLICT (branch_id) DO NOTHING`, branchID,
	); err != nil {
		return 0, fmt.Errorf("ensure serial counter: %w", err)
	}
	var last int64
	if err := exec.QueryRowContext(ctx,
		`SELECT last_serial FROM certified_serial_counters WHERE branch_id = $1 FOR UPDATE`, branchID,
	).Scan(&last); err != nil {
		return 0, fmt.Errorf("lock serial counter: %w", err)
	}
	return last, nil
}

func (s *PostgresStore) Advance(ctx context.Context, branchID string, lastSerial int64) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE certified_serial_counters
		SET last_serial = $2, version = version + 1, updated_at = now()
		WHERE branch_id = $1
	`, branchID, lastSerial)
	if err != nil {
		return fmt.Errorf("advance serial counter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance serial counter: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

var errNoTx = errors.New("no transaction in context")
