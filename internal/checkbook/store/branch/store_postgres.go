package branch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chequeprint/internal/checkbook/models"
	"chequeprint/pkg/platform/sentinel"
)

// PostgresStore reads branch identities owned by branch management.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectBranch = `
	SELECT id, name, location, routing_number, branch_code, accounting_number
	FROM branches
`

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Branch, error) {
	return s.one(ctx, selectBranch+" WHERE id = $1", id)
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Branch, error) {
	return s.one(ctx, selectBranch+" WHERE branch_code = $1 LIMIT 1", code)
}

func (s *PostgresStore) one(ctx context.Context, query string, arg string) (*models.Branch, error) {
	var (
		b                         models.Branch
		routing, code, accounting sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&b.ID, &b.Name, &b.Location, &routing, &code, &accounting)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load branch: %w", err)
	}
	b.RoutingNumber = routing.String
	b.BranchCode = code.String
	b.AccountingNumber = accounting.String
	return &b, nil
}

// Upsert registers or updates a branch. Branch data is owned upstream; this
// exists for provisioning from the operator CLI.
func (s *PostgresStore) Upsert(ctx context.Context, b models.Branch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, location, routing_number, branch_code, accounting_number)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			routing_number = EXCLUDED.routing_number,
			branch_code = EXCLUDED.branch_code,
			accounting_number = EXCLUDED.accounting_number
	`, b.ID, b.Name, b.Location, b.RoutingNumber, b.BranchCode, b.AccountingNumber)
	if err != nil {
		return fmt.Errorf("upsert branch: %w", err)
	}
	return nil
}
