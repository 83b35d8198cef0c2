package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"designcollab/internal/design"
)

const designCacheTTL = 5 * time.Minute

// redisCache is the slice of the go-redis API the cache layer touches.
// *redis.Client satisfies it; tests supply an in-memory fake.
type redisCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// DesignRepository is the full design persistence surface: the real-time
// store contract plus the CRUD operations the HTTP API needs.
type DesignRepository interface {
	design.Store
	Create(ctx context.Context, d *design.Design) error
	List(ctx context.Context, page, limit int) ([]design.Design, int, error)
	Delete(ctx context.Context, id string) error
}

// CachedDesignStore is a read-through Redis cache over a design repository.
// Reads are served from Redis when warm; every write goes to the inner store
// first and then drops the cached document, so a stale read never outlives
// one TTL and the inner store stays the source of truth. Only documents are
// cached, never room membership.
type CachedDesignStore struct {
	inner  DesignRepository
	rdb    redisCache
	logger *zap.Logger
}

func NewCachedDesignStore(inner DesignRepository, rdb redisCache, logger *zap.Logger) *CachedDesignStore {
	return &CachedDesignStore{inner: inner, rdb: rdb, logger: logger}
}

func designKey(id string) string {
	return "design:" + id
}

func (s *CachedDesignStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, designKey(id)).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	return s.inner.Exists(ctx, id)
}

func (s *CachedDesignStore) ByID(ctx context.Context, id string) (*design.Design, error) {
	raw, err := s.rdb.Get(ctx, designKey(id)).Bytes()
	if err == nil {
		var d design.Design
		if err := json.Unmarshal(raw, &d); err == nil {
			return &d, nil
		}
		// Unreadable cache entry; fall through to the store.
		s.rdb.Del(ctx, designKey(id))
	} else if err != redis.Nil {
		s.logger.Warn("design cache read failed", zap.String("design_id", id), zap.Error(err))
	}

	d, err := s.inner.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, d)
	return d, nil
}

func (s *CachedDesignStore) MergeFields(ctx context.Context, id string, fields map[string]interface{}) (*design.Design, error) {
	d, err := s.inner.MergeFields(ctx, id, fields)
	s.invalidate(ctx, id)
	return d, err
}

func (s *CachedDesignStore) AppendElement(ctx context.Context, id string, el design.Element) (*design.Design, error) {
	d, err := s.inner.AppendElement(ctx, id, el)
	s.invalidate(ctx, id)
	return d, err
}

func (s *CachedDesignStore) MergeElement(ctx context.Context, id, elementID string, updates map[string]interface{}) (*design.Design, error) {
	d, err := s.inner.MergeElement(ctx, id, elementID, updates)
	s.invalidate(ctx, id)
	return d, err
}

func (s *CachedDesignStore) RemoveElement(ctx context.Context, id, elementID string) (*design.Design, error) {
	d, err := s.inner.RemoveElement(ctx, id, elementID)
	s.invalidate(ctx, id)
	return d, err
}

func (s *CachedDesignStore) Create(ctx context.Context, d *design.Design) error {
	return s.inner.Create(ctx, d)
}

func (s *CachedDesignStore) List(ctx context.Context, page, limit int) ([]design.Design, int, error) {
	return s.inner.List(ctx, page, limit)
}

func (s *CachedDesignStore) Delete(ctx context.Context, id string) error {
	err := s.inner.Delete(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedDesignStore) fill(ctx context.Context, d *design.Design) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, designKey(d.ID), raw, designCacheTTL).Err(); err != nil {
		s.logger.Warn("design cache fill failed", zap.String("design_id", d.ID), zap.Error(err))
	}
}

func (s *CachedDesignStore) invalidate(ctx context.Context, id string) {
	if err := s.rdb.Del(ctx, designKey(id)).Err(); err != nil {
		s.logger.Warn("design cache invalidate failed", zap.String("design_id", id), zap.Error(err))
	}
}
