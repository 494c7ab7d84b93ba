package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeprint/internal/platform/config"
)

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	serialization := &pgconn.PgError{Code: "40001"}
	deadlock := &pgconn.PgError{Code: "40P01"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(serialization))
	assert.True(t, IsSerializationFailure(serialization))
	assert.True(t, IsSerializationFailure(deadlock))
	assert.False(t, IsSerializationFailure(errors.New("plain")))
}

func TestOpenWithoutURL(t *testing.T) {
	db, err := Open(context.Background(), config.DatabaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestSchemaDeclaresAllocatorBackstop(t *testing.T) {
	ddl := Schema()
	assert.Contains(t, ddl, "certified_serial_counters")
	assert.Contains(t, ddl, "uq_certified_logs_branch_first_print")
	assert.Contains(t, ddl, "leaf_numbers      BIGINT[]")
	assert.Contains(t, ddl, "ADD COLUMN IF NOT EXISTS served_at")
}
