package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chequeprint/internal/certified/service"
	"chequeprint/internal/certified/store/checklog"
	"chequeprint/internal/certified/store/serial"
	"chequeprint/internal/certified/store/stock"
	"chequeprint/internal/outbox"
	"chequeprint/internal/platform/postgres"
	dErrors "chequeprint/pkg/domain-errors"
	"chequeprint/pkg/platform/sentinel"
	txcontext "chequeprint/pkg/platform/tx"
)

const defaultCommitTxTimeout = 5 * time.Second

// PostgresTx runs certified commits in one database transaction. The branch
// counter row lock taken by LockLastSerial serializes commits per branch.
type PostgresTx struct {
	db      *sql.DB
	stores  service.Stores
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db, stores: NewPostgresStores(db)}
}

// NewPostgresStores returns stores that join the transaction carried by ctx.
func NewPostgresStores(db *sql.DB) service.Stores {
	return service.Stores{
		Serials: serial.NewPostgresStore(db),
		Stock:   stock.NewPostgresStore(db),
		Logs:    checklog.NewPostgresStore(db),
		Outbox:  outbox.NewPostgresStore(db),
	}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores service.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCommitTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin certified tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx), t.stores); err != nil {
		if postgres.IsSerializationFailure(err) {
			return fmt.Errorf("certified tx: %w: %w", sentinel.ErrConflict, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if postgres.IsSerializationFailure(err) {
			return fmt.Errorf("commit certified tx: %w: %w", sentinel.ErrConflict, err)
		}
		return fmt.Errorf("commit certified tx: %w", err)
	}
	return nil
}
