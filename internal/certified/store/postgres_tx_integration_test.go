//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"chequeprint/internal/certified/models"
	"chequeprint/internal/certified/service"
	"chequeprint/internal/certified/store"
	"chequeprint/internal/checkbook/layout"
	"chequeprint/internal/checkbook/printer"
	"chequeprint/internal/checkbook/printmodel"
	"chequeprint/internal/checkbook/render"
	"chequeprint/internal/checkbook/store/branch"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/requestcontext"
	"chequeprint/pkg/testutil/containers"
)

type PostgresAllocatorSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	stores   service.Stores
	service  *service.Service
	ctx      context.Context
}

func TestPostgresAllocatorSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAllocatorSuite))
}

func (s *PostgresAllocatorSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	db := s.postgres.DB
	s.stores = store.NewPostgresStores(db)
	cfg := layout.Defaults()
	p := printer.New(layout.NewResolver(cfg, layout.NewPostgresStore(db)), printmodel.New(cfg), render.New(cfg.MICRFont, cfg.TextFont))
	s.service = service.New(s.stores, store.NewPostgresTx(db), branch.NewPostgresStore(db), p)
	s.ctx = requestcontext.WithOperator(context.Background(), "op-1")
}

func (s *PostgresAllocatorSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"certified_check_logs", "certified_serial_counters", "outbox", "branches"))
	s.Require().NoError(s.postgres.SetCertifiedStock(ctx, 1000))
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO branches (id, name, location, routing_number, branch_code, accounting_number)
		VALUES ('b1', 'Main', 'Downtown', '4521', '001', '1234567')
	`)
	s.Require().NoError(err)
}

func (s *PostgresAllocatorSuite) stock() int64 {
	q, err := s.stores.Stock.Available(context.Background())
	s.Require().NoError(err)
	return q
}

func (s *PostgresAllocatorSuite) outboxRows() int {
	var n int
	s.Require().NoError(s.postgres.DB.QueryRow(`SELECT count(*) FROM outbox`).Scan(&n))
	return n
}

func (s *PostgresAllocatorSuite) TestThreeBooksForNewBranch() {
	log, err := s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 3})
	s.Require().NoError(err)
	s.Equal(int64(1), log.FirstSerial)
	s.Equal(int64(150), log.LastSerial)
	s.Equal(int64(850), s.stock())
	s.Equal(1, s.outboxRows())

	logs, err := s.service.History(s.ctx, "b1", 0)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(3, logs[0].NumberOfBooks)

	p, err := s.service.PreviewRange(s.ctx, "b1", service.PreviewOptions{NumberOfBooks: 1})
	s.Require().NoError(err)
	s.Equal(int64(151), p.Range.FirstSerial)
	s.Require().NotNil(p.LastCommitted)
	s.Equal(int64(150), p.LastCommitted.LastSerial)

	_, doc, err := s.service.PrintBatch(s.ctx, log.ID)
	s.Require().NoError(err)
	s.Equal(150, doc.Pages)
	s.Equal(2, s.outboxRows())

	_, _, err = s.service.PrintBatch(s.ctx, log.ID)
	s.True(dErrors.HasCode(err, dErrors.CodePrintBlocked))

	stored, err := s.stores.Logs.Get(context.Background(), log.ID)
	s.Require().NoError(err)
	s.True(stored.Served())
	s.Equal(2, s.outboxRows())
}

func (s *PostgresAllocatorSuite) TestConcurrentServesExactlyOneWins() {
	log, err := s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 1})
	s.Require().NoError(err)

	const goroutines = 4
	var (
		wg      sync.WaitGroup
		served  atomic.Int32
		blocked atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.service.PrintBatch(s.ctx, log.ID)
			switch {
			case err == nil:
				served.Add(1)
			case dErrors.HasCode(err, dErrors.CodePrintBlocked):
				blocked.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), served.Load())
	s.Equal(int32(goroutines-1), blocked.Load())
}

func (s *PostgresAllocatorSuite) TestConcurrentCommitsExactlyOneWins() {
	const goroutines = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 1})
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeSerialConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
	s.Equal(int64(950), s.stock())
	s.Equal(1, s.outboxRows())
}

func (s *PostgresAllocatorSuite) TestInsufficientStockRollsBack() {
	s.Require().NoError(s.postgres.SetCertifiedStock(context.Background(), 40))

	_, err := s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientStock))

	s.Equal(int64(40), s.stock())
	s.Equal(0, s.outboxRows())
	last, err := s.stores.Serials.LastSerial(context.Background(), "b1")
	s.Require().NoError(err)
	s.Equal(int64(0), last)
}

func (s *PostgresAllocatorSuite) TestDuplicateFirstPrintIsRefusedByIndex() {
	_, err := s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 1})
	s.Require().NoError(err)

	_, err = s.service.CommitRange(s.ctx, models.CommitRequest{BranchID: "b1", FirstSerial: 1, NumberOfBooks: 1, Override: true})
	s.True(dErrors.HasCode(err, dErrors.CodeSerialConflict))
	s.Equal(int64(950), s.stock(), "deduction rolled back with the failed insert")
}
