package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chequeprint/internal/certified/models"
	dErrors "chequeprint/pkg/domain-errors"
)

// StoreTx runs fn as one atomic unit: every store write made through the
// provided stores and ctx commits together or not at all.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

const numBranchShards = 64

// defaultCommitTxTimeout is the maximum duration for a commit unit.
const defaultCommitTxTimeout = 5 * time.Second

// shardedTx serializes units per branch with sharded mutexes. Stores without
// native transactions cannot roll back, so every successful write registers
// a compensating action that runs in reverse order if fn fails.
type shardedTx struct {
	shards  [numBranchShards]sync.Mutex
	stores  Stores
	timeout time.Duration
}

// NewInMemoryTx returns a StoreTx for in-memory stores.
func NewInMemoryTx(stores Stores) StoreTx {
	return &shardedTx{stores: stores}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
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

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	j := &journal{}
	err := fn(ctx, Stores{
		Serials: journalingSerials{SerialStore: t.stores.Serials, j: j},
		Stock:   journalingStock{StockStore: t.stores.Stock, j: j},
		Logs:    journalingLogs{LogStore: t.stores.Logs, j: j},
		Outbox:  t.stores.Outbox,
	})
	if err != nil {
		// Compensation must finish even when the unit timed out.
		j.rollback(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

// selectShard picks a shard from the branch in context, or defaults to shard 0.
func (t *shardedTx) selectShard(ctx context.Context) int {
	if branchID, ok := ctx.Value(txBranchKeyCtx).(string); ok && branchID != "" {
		return int(hashBranch(branchID) % numBranchShards)
	}
	return 0
}

// hashBranch is FNV-1a.
func hashBranch(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

type txBranchKey struct{}

var txBranchKeyCtx = txBranchKey{}

func withTxBranch(ctx context.Context, branchID string) context.Context {
	return context.WithValue(ctx, txBranchKeyCtx, branchID)
}

type journal struct {
	undo []func(ctx context.Context)
}

func (j *journal) record(fn func(ctx context.Context)) {
	j.undo = append(j.undo, fn)
}

func (j *journal) rollback(ctx context.Context) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](ctx)
	}
}

type journalingSerials struct {
	SerialStore
	j *journal
}

func (s journalingSerials) Advance(ctx context.Context, branchID string, lastSerial int64) error {
	prev, err := s.SerialStore.LastSerial(ctx, branchID)
	if err != nil {
		return err
	}
	if err := s.SerialStore.Advance(ctx, branchID, lastSerial); err != nil {
		return err
	}
	s.j.record(func(ctx context.Context) {
		_ = s.SerialStore.Advance(ctx, branchID, prev)
	})
	return nil
}

type journalingStock struct {
	StockStore
	j *journal
}

func (s journalingStock) Deduct(ctx context.Context, quantity int64) error {
	if err := s.StockStore.Deduct(ctx, quantity); err != nil {
		return err
	}
	s.j.record(func(ctx context.Context) {
		_ = s.StockStore.Add(ctx, quantity)
	})
	return nil
}

// servedUnmarker is implemented by log stores that can undo MarkServed.
type servedUnmarker interface {
	UnmarkServed(ctx context.Context, id uuid.UUID) error
}

func (s journalingLogs) MarkServed(ctx context.Context, id uuid.UUID, by string, at time.Time) error {
	if err := s.LogStore.MarkServed(ctx, id, by, at); err != nil {
		return err
	}
	if u, ok := s.LogStore.(servedUnmarker); ok {
		s.j.record(func(ctx context.Context) {
			_ = u.UnmarkServed(ctx, id)
		})
	}
	return nil
}

// logRemover is implemented by log stores that can undo an append.
type logRemover interface {
	Remove(ctx context.Context, id uuid.UUID) error
}

type journalingLogs struct {
	LogStore
	j *journal
}

func (s journalingLogs) Append(ctx context.Context, log *models.CheckLog) error {
	if err := s.LogStore.Append(ctx, log); err != nil {
		return err
	}
	if r, ok := s.LogStore.(logRemover); ok {
		id := log.ID
		s.j.record(func(ctx context.Context) {
			_ = r.Remove(ctx, id)
		})
	}
	return nil
}
