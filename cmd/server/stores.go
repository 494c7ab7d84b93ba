package main

import (
	"context"
	"database/sql"
	"log/slog"

	certservice "chequeprint/internal/certified/service"
	certstore "chequeprint/internal/certified/store"
	"chequeprint/internal/certified/store/checklog"
	"chequeprint/internal/certified/store/serial"
	"chequeprint/internal/certified/store/stock"
	"chequeprint/internal/checkbook/layout"
	"chequeprint/internal/checkbook/models"
	cbservice "chequeprint/internal/checkbook/service"
	"chequeprint/internal/checkbook/store/branch"
	"chequeprint/internal/checkbook/store/printlog"
	httpapi "chequeprint/internal/http"
	"chequeprint/internal/outbox"
	"chequeprint/internal/platform/config"
	"chequeprint/internal/platform/postgres"
	redisclient "chequeprint/internal/platform/redis"
	"chequeprint/pkg/platform/tx"
)

// branchStore serves both the checkbook (by code) and certified (by id)
// lookups.
type branchStore interface {
	Get(ctx context.Context, id string) (*models.Branch, error)
	FindByCode(ctx context.Context, code string) (*models.Branch, error)
}

// devBranch lets a database-less server be exercised end to end.
var devBranch = models.Branch{
	ID:               "dev",
	Name:             "Development Branch",
	Location:         "Local",
	RoutingNumber:    "000000000",
	BranchCode:       "000",
	AccountingNumber: "0000000",
}

const devCertifiedStock = 5000

type stores struct {
	kind        string
	db          *sql.DB
	redis       *redisclient.Client
	branches    branchStore
	layouts     layout.OverrideStore
	printLogs   cbservice.PrintLogStore
	outbox      outbox.Store
	printTx     cbservice.TxRunner
	certified   certservice.Stores
	certifiedTx certservice.StoreTx
	health      map[string]httpapi.HealthCheck
}

// openStores picks PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise. Redis, when configured, caches layout overrides either way.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	st := &stores{health: make(map[string]httpapi.HealthCheck)}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		st.kind = "postgres"
		st.db = db
		st.branches = branch.NewPostgresStore(db)
		st.layouts = layout.NewPostgresStore(db)
		st.printLogs = printlog.NewPostgresStore(db)
		st.outbox = outbox.NewPostgresStore(db)
		st.printTx = tx.NewRunner(db)
		st.certified = certstore.NewPostgresStores(db)
		st.certifiedTx = certstore.NewPostgresTx(db)
		st.health["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL is not set; using in-memory stores",
			"branch_id", devBranch.ID,
			"certified_stock", devCertifiedStock,
		)
		events := outbox.NewInMemoryStore()
		st.kind = "memory"
		st.branches = branch.NewInMemoryStore(devBranch)
		st.layouts = layout.NewInMemoryStore()
		st.printLogs = printlog.NewInMemoryStore()
		st.outbox = events
		st.printTx = tx.NoopRunner{}
		st.certified = certservice.Stores{
			Serials: serial.NewInMemoryStore(),
			Stock:   stock.NewInMemoryStore(devCertifiedStock),
			Logs:    checklog.NewInMemoryStore(),
			Outbox:  events,
		}
		st.certifiedTx = certservice.NewInMemoryTx(st.certified)
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		st.Close()
		return nil, err
	}
	if rc != nil {
		st.redis = rc
		st.layouts = layout.NewRedisCache(st.layouts, rc.Client, cfg.Redis.LayoutTTL, log)
		st.health["redis"] = rc.Health
	}
	return st, nil
}

func (s *stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}
