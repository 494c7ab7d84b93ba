package layout

import (
	"context"
	"database/sql"
	"fmt"

	"chequeprint/internal/checkbook/models"
)

// PostgresStore reads layout overrides maintained by the layout settings screens.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	query := `
		SELECT field, x, y, font_size, align
		FROM print_layout_positions
		WHERE document_type = $1
	`
	rows, err := s.db.QueryContext(ctx, query, int(docType))
	if err != nil {
		return nil, fmt.Errorf("query layout positions: %w", err)
	}
	defer rows.Close()

	out := make(models.LayoutOverrides)
	for rows.Next() {
		var (
			field          string
			x, y, fontSize sql.NullFloat64
			align          sql.NullString
			override       models.PositionOverride
		)
		if err := rows.Scan(&field, &x, &y, &fontSize, &align); err != nil {
			return nil, fmt.Errorf("scan layout position: %w", err)
		}
		if x.Valid {
			override.X = &x.Float64
		}
		if y.Valid {
			override.Y = &y.Float64
		}
		if fontSize.Valid {
			override.FontSize = &fontSize.Float64
		}
		if align.Valid {
			if a, err := models.ParseAlign(align.String); err == nil {
				override.Align = &a
			}
		}
		out[models.Field(field)] = override
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layout positions: %w", err)
	}
	return out, nil
}
