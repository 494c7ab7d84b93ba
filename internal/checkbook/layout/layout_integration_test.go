//go:build integration

package layout

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chequeprint/internal/checkbook/models"
	"chequeprint/pkg/testutil/containers"
)

type countingStore struct {
	next  OverrideStore
	calls atomic.Int32
}

func (s *countingStore) Overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	s.calls.Add(1)
	return s.next.Overrides(ctx, docType)
}

type LayoutStorageSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redis    *containers.RedisContainer
	ctx      context.Context
}

func TestLayoutStorageSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(LayoutStorageSuite))
}

func (s *LayoutStorageSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.redis = containers.GetManager().GetRedis(s.T())
	s.ctx = context.Background()
}

func (s *LayoutStorageSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "print_layout_positions"))
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

// =============================================================================
// Postgres overrides
// =============================================================================

func (s *LayoutStorageSuite) TestPostgresOverrides() {
	_, err := s.postgres.DB.ExecContext(s.ctx, `
		INSERT INTO print_layout_positions (document_type, field, x, y, font_size, align)
		VALUES (2, 'serial', 150.5, NULL, 11, 'right'),
		       (2, 'holder_name', NULL, 40, NULL, 'sideways'),
		       (1, 'serial', 10, 10, NULL, NULL)
	`)
	s.Require().NoError(err)

	overrides, err := NewPostgresStore(s.postgres.DB).Overrides(s.ctx, models.DocumentTypeCorporate)
	s.Require().NoError(err)
	s.Require().Len(overrides, 2)

	serial := overrides[models.FieldSerial]
	s.Require().NotNil(serial.X)
	s.Equal(150.5, *serial.X)
	s.Nil(serial.Y)
	s.Require().NotNil(serial.Align)
	s.Equal(models.AlignRight, *serial.Align)

	holder := overrides[models.FieldHolderName]
	s.Nil(holder.Align, "unknown alignments are ignored")
	s.Require().NotNil(holder.Y)
	s.Equal(40.0, *holder.Y)
}

// =============================================================================
// Redis cache
// =============================================================================

func (s *LayoutStorageSuite) TestRedisCacheServesRepeatReads() {
	mem := NewInMemoryStore()
	x := 99.0
	mem.Set(models.DocumentTypeIndividual, models.FieldMICR, models.PositionOverride{X: &x})
	store := &countingStore{next: mem}
	cache := NewRedisCache(store, s.redis.Client, time.Minute, nil)

	for range 3 {
		overrides, err := cache.Overrides(s.ctx, models.DocumentTypeIndividual)
		s.Require().NoError(err)
		s.Require().NotNil(overrides[models.FieldMICR].X)
		s.Equal(99.0, *overrides[models.FieldMICR].X)
	}
	s.Equal(int32(1), store.calls.Load())

	s.Require().NoError(cache.Invalidate(s.ctx, models.DocumentTypeIndividual))
	_, err := cache.Overrides(s.ctx, models.DocumentTypeIndividual)
	s.Require().NoError(err)
	s.Equal(int32(2), store.calls.Load())
}

func (s *LayoutStorageSuite) TestRedisCacheKeysByDocumentType() {
	store := &countingStore{next: NewInMemoryStore()}
	cache := NewRedisCache(store, s.redis.Client, time.Minute, nil)

	_, err := cache.Overrides(s.ctx, models.DocumentTypeIndividual)
	s.Require().NoError(err)
	_, err = cache.Overrides(s.ctx, models.DocumentTypeCorporate)
	s.Require().NoError(err)

	s.Equal(int32(2), store.calls.Load())
}

func (s *LayoutStorageSuite) TestRedisCacheDiscardsCorruptEntries() {
	store := &countingStore{next: NewInMemoryStore()}
	cache := NewRedisCache(store, s.redis.Client, time.Minute, nil)

	s.Require().NoError(s.redis.Client.Set(s.ctx, cacheKeyPrefix+"1", "not json", time.Minute).Err())

	_, err := cache.Overrides(s.ctx, models.DocumentTypeIndividual)
	s.Require().NoError(err)
	s.Equal(int32(1), store.calls.Load())
}
