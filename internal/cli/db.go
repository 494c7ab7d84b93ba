package cli

import (
	"context"
	"database/sql"
	"errors"

	"chequeprint/internal/platform/config"
	"chequeprint/internal/platform/postgres"
)

var errNoDatabase = errors.New("a database is required: pass --database-url or set DATABASE_URL")

func openDB(ctx context.Context, opts *RootOptions) (*sql.DB, error) {
	if opts.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	return postgres.Open(ctx, config.DatabaseConfig{URL: opts.DatabaseURL, MaxOpenConns: 2})
}
