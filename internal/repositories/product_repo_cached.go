package repositories

import (
	"context"
	"errors"
	"sync/atomic"

	"produtos/internal/cache"
	"produtos/internal/models"
	"produtos/pkg/logx"
)

// Cache is the subset of cache.RedisCache used by CachedProductRepository.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedProductRepository serves GetByID from a cache and invalidates
// entries on update and delete. Listings always hit the wrapped store.
//
// Writes made through the same instance never leave a stale entry behind:
// a read that raced with a write does not keep what it cached. Writes made
// by other processes are only bounded by the cache TTL.
type CachedProductRepository struct {
	repo  ProductRepository
	cache Cache

	// writes is bumped after every successful update or delete.
	writes atomic.Uint64
}

// NewCachedProductRepository wraps repo with cache.
func NewCachedProductRepository(repo ProductRepository, cache Cache) *CachedProductRepository {
	return &CachedProductRepository{
		repo:  repo,
		cache: cache,
	}
}

func productKey(id string) string {
	return "produto:" + id
}

// Find delegates to the wrapped repository.
func (r *CachedProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return r.repo.Find(ctx, filter)
}

// GetByID returns a cached product or loads and caches it.
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.cache.Get(ctx, productKey(id), &product)
	if err == nil {
		logx.Debug().Str("id", id).Msg("cache hit")
		return &product, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logx.Warn().Err(err).Str("id", id).Msg("cache read failed")
	}

	gen := r.writes.Load()
	p, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.writes.Load() != gen {
		return p, nil
	}
	if err := r.cache.Set(ctx, productKey(id), p); err != nil {
		logx.Warn().Err(err).Str("id", id).Msg("cache write failed")
	}
	// A write may have invalidated the key while Set was in flight.
	if r.writes.Load() != gen {
		r.invalidate(ctx, id)
	}
	return p, nil
}

// Create delegates to the wrapped repository.
func (r *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.repo.Create(ctx, product)
}

// Update updates the wrapped store and drops the cached entry.
func (r *CachedProductRepository) Update(ctx context.Context, id string, input models.ProductInput) error {
	if err := r.repo.Update(ctx, id, input); err != nil {
		return err
	}
	r.writes.Add(1)
	r.invalidate(ctx, id)
	return nil
}

// Delete deletes from the wrapped store and drops the cached entry.
func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.writes.Add(1)
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, productKey(id)); err != nil {
		logx.Warn().Err(err).Str("id", id).Msg("cache invalidation failed")
	}
}
