//go:build integration

package printlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chequeprint/internal/checkbook/models"
	"chequeprint/internal/checkbook/store/printlog"
	"chequeprint/pkg/platform/tx"
	"chequeprint/pkg/testutil/containers"
)

type PostgresPrintLogSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *printlog.PostgresStore
	ctx      context.Context
}

func TestPostgresPrintLogSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresPrintLogSuite))
}

func (s *PostgresPrintLogSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = printlog.NewPostgresStore(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresPrintLogSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "print_logs"))
}

func (s *PostgresPrintLogSuite) entry(op models.OperationType, reason string, at time.Time, leaves ...int64) *models.PrintLogEntry {
	e, err := models.NewPrintLogEntry("2100200300", "001", models.DocumentTypeCorporate, op, reason, "teller-7", leaves, at)
	s.Require().NoError(err)
	return e
}

func (s *PostgresPrintLogSuite) TestAppendAndFind() {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := s.entry(models.OperationPrint, "", base, 101, 102, 103)
	second := s.entry(models.OperationReprint, "jammed", base.Add(time.Hour), 102)

	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, second))

	entries, err := s.store.FindByAccount(s.ctx, "2100200300")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.Run("newest first", func() {
		s.Equal(second.ID, entries[0].ID)
		s.Equal(first.ID, entries[1].ID)
	})

	s.Run("fields round-trip", func() {
		got := entries[1]
		s.Equal([]int64{101, 102, 103}, got.LeafNumbers)
		s.Equal(int64(101), got.FirstLeafNumber)
		s.Equal(int64(103), got.LastLeafNumber)
		s.Equal(3, got.TotalLeaves)
		s.Equal(models.DocumentTypeCorporate, got.DocumentType)
		s.Equal(models.OperationPrint, got.OperationType)
		s.Empty(got.ReprintReason)
		s.Equal("teller-7", got.PrintedBy)
		s.True(base.Equal(got.PrintDate))

		s.Equal("jammed", entries[0].ReprintReason)
		s.Equal(models.OperationReprint, entries[0].OperationType)
	})
}

func (s *PostgresPrintLogSuite) TestFindUnknownAccount() {
	entries, err := s.store.FindByAccount(s.ctx, "9999999999")
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *PostgresPrintLogSuite) TestAppendJoinsTransaction() {
	runner := tx.NewRunner(s.postgres.DB)
	boom := errors.New("outbox unavailable")

	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		if err := s.store.Append(ctx, s.entry(models.OperationPrint, "", time.Now().UTC(), 101)); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	entries, err := s.store.FindByAccount(s.ctx, "2100200300")
	s.Require().NoError(err)
	s.Empty(entries, "rolled back append must not be visible")
}
