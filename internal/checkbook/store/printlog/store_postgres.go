package printlog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"chequeprint/internal/checkbook/models"
	"chequeprint/pkg/platform/tx"
)

// PostgresStore persists print logs. Append joins the caller's transaction
// when one is carried by the context so the outbox row commits with it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.PrintLogEntry) error {
	query := `
		INSERT INTO print_logs (
			id, account_number, account_branch, first_leaf_number, last_leaf_number,
			total_leaves, document_type, operation_type, reprint_reason,
			printed_by, print_date, leaf_numbers
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		entry.ID,
		entry.AccountNumber,
		entry.AccountBranch,
		entry.FirstLeafNumber,
		entry.LastLeafNumber,
		entry.TotalLeaves,
		int(entry.DocumentType),
		string(entry.OperationType),
		sql.NullString{String: entry.ReprintReason, Valid: entry.ReprintReason != ""},
		entry.PrintedBy,
		entry.PrintDate,
		pq.Array(entry.LeafNumbers),
	)
	if err != nil {
		return fmt.Errorf("insert print log: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAccount(ctx context.Context, accountNumber string) ([]*models.PrintLogEntry, error) {
	query := `
		SELECT id, account_number, account_branch, first_leaf_number, last_leaf_number,
			total_leaves, document_type, operation_type, reprint_reason,
			printed_by, print_date, leaf_numbers
		FROM print_logs
		WHERE account_number = $1
		ORDER BY print_date DESC, id
	`
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("query print logs: %w", err)
	}
	defer rows.Close()

	var out []*models.PrintLogEntry
	for rows.Next() {
		var (
			entry   models.PrintLogEntry
			docType int
			op      string
			reason  sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountNumber,
			&entry.AccountBranch,
			&entry.FirstLeafNumber,
			&entry.LastLeafNumber,
			&entry.TotalLeaves,
			&docType,
			&op,
			&reason,
			&entry.PrintedBy,
			&entry.PrintDate,
			pq.Array(&entry.LeafNumbers),
		); err != nil {
			return nil, fmt.Errorf("scan print log: %w", err)
		}
		entry.DocumentType = models.DocumentType(docType)
		entry.OperationType = models.OperationType(op)
		entry.ReprintReason = reason.String
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate print logs: %w", err)
	}
	return out, nil
}
