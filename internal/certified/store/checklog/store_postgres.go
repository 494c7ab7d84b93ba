package checklog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chequeprint/internal/certified/models"
	cbmodels "chequeprint/internal/checkbook/models"
	"chequeprint/internal/platform/postgres"
	"chequeprint/pkg/platform/sentinel"
	"chequeprint/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append returns sentinel.ErrConflict when a first print already starts at
// the same serial for the branch.
func (s *PostgresStore) Append(ctx context.Context, log *models.CheckLog) error {
	query := `
		INSERT INTO certified_check_logs (
			id, branch_id, first_serial, last_serial, total_checks, number_of_books,
			custom_start_serial, operation_type, printed_by, print_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var custom sql.NullInt64
	if log.CustomStartSerial != nil {
		custom = sql.NullInt64{Int64: *log.CustomStartSerial, Valid: true}
	}
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		log.ID,
		log.BranchID,
		log.FirstSerial,
		log.LastSerial,
		log.TotalChecks,
		log.NumberOfBooks,
		custom,
		string(log.OperationType),
		log.PrintedBy,
		log.PrintDate,
		sql.NullString{String: log.Notes, Valid: log.Notes != ""},
	)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("insert certified log: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert certified log: %w", err)
	}
	return nil
}

// MarkServed stamps the log as handed out. The conditional update makes a
// second serve of the same batch fail with sentinel.ErrConflict.
func (s *PostgresStore) MarkServed(ctx context.Context, id uuid.UUID, by string, at time.Time) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE certified_check_logs
		SET served_at = $2, served_by = $3
		WHERE id = $1 AND served_at IS NULL
	`, id, at, by)
	if err != nil {
		return fmt.Errorf("mark certified log served: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark certified log served: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return sentinel.ErrConflict
}

const selectLog = `
	SELECT id, branch_id, first_serial, last_serial, total_checks, number_of_books,
		custom_start_serial, operation_type, printed_by, print_date, notes,
		served_at, served_by
	FROM certified_check_logs
`

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.CheckLog, error) {
	return s.one(ctx, selectLog+" WHERE id = $1", id)
}

func (s *PostgresStore) LastCommitted(ctx context.Context, branchID string) (*models.CheckLog, error) {
	return s.one(ctx, selectLog+`
		WHERE branch_id = $1 AND operation_type = 'PRINT'
		ORDER BY print_date DESC, last_serial DESC
		LIMIT 1`, branchID)
}

func (s *PostgresStore) ListByBranch(ctx context.Context, branchID string, limit int) ([]*models.CheckLog, error) {
	query := selectLog + `
		WHERE branch_id = $1
		ORDER BY print_date DESC, last_serial DESC`
	args := []any{branchID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query certified logs: %w", err)
	}
	defer rows.Close()

	var out []*models.CheckLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certified logs: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) one(ctx context.Context, query string, arg any) (*models.CheckLog, error) {
	l, err := scanLog(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return l, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(row scanner) (*models.CheckLog, error) {
	var (
		l      models.CheckLog
		custom sql.NullInt64
		op     string
		notes  sql.NullString
		served sql.NullTime
		by     sql.NullString
	)
	err := row.Scan(
		&l.ID,
		&l.BranchID,
		&l.FirstSerial,
		&l.LastSerial,
		&l.TotalChecks,
		&l.NumberOfBooks,
		&custom,
		&op,
		&l.PrintedBy,
		&l.PrintDate,
		&notes,
		&served,
		&by,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan certified log: %w", err)
	}
	if custom.Valid {
		v := custom.Int64
		l.CustomStartSerial = &v
	}
	l.OperationType = cbmodels.OperationType(op)
	l.Notes = notes.String
	if served.Valid {
		at := served.Time
		l.ServedAt = &at
	}
	l.ServedBy = by.String
	return &l, nil
}
