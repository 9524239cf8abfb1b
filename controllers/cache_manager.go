package controllers

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

const (
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
	DefaultCacheTTL        = 5 * time.Minute
)

// cacheStore is the part of *redis.Client the cache uses.
type cacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// CacheManager caches rendered get-product responses. Every catalog mutation
// bumps a version counter, which orphans all earlier entries at once.
type CacheManager struct {
	redis cacheStore
	ttl   time.Duration
}

// NewCacheManager returns nil when rdb is nil; a nil manager never hits.
func NewCacheManager(rdb *redis.Client, ttl time.Duration) *CacheManager {
	if rdb == nil {
		return nil
	}
	return newCacheManager(rdb, ttl)
}

func newCacheManager(store cacheStore, ttl time.Duration) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{redis: store, ttl: ttl}
}

// GetProductList returns the cached body for q and the cache version it was
// looked up under. A miss still reports the version so the caller can store
// its fresh body under it; version 0 means the cache is unusable.
func (cm *CacheManager) GetProductList(ctx context.Context, q services.ProductQuery) ([]byte, int64, bool) {
	if cm == nil {
		return nil, 0, false
	}
	version, err := cm.version(ctx)
	if err != nil {
		return nil, 0, false
	}
	body, err := cm.redis.Get(ctx, listKey(version, q)).Bytes()
	if err != nil {
		return nil, version, false
	}
	return body, version, true
}

// SetProductListAsync stores body for q under version without blocking the
// response. version must be the one GetProductList reported before the store
// was read; a body read before an Invalidate then lands under the old,
// already orphaned version.
func (cm *CacheManager) SetProductListAsync(version int64, q services.ProductQuery, body []byte) {
	if cm == nil || version <= 0 {
		return
	}
	key := listKey(version, q)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cm.redis.Set(ctx, key, body, cm.ttl).Err(); err != nil {
			zap.L().Warn("failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate bumps the cache version.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if cm == nil {
		return
	}
	v, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		zap.L().Error("failed to invalidate product cache", zap.Error(err))
		return
	}
	zap.L().Debug("product cache invalidated", zap.Int64("version", v))
}

func (cm *CacheManager) version(ctx context.Context) (int64, error) {
	v, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SetNX so a concurrent Invalidate is not overwritten
		if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return cm.redis.Get(ctx, CacheVersionKey).Int64()
	}
	return v, err
}

// listKey query-escapes every component, so slugs containing the separator
// cannot collide.
func listKey(version int64, q services.ProductQuery) string {
	params := url.Values{
		"category": {q.CategorySlug},
		"slug":     {q.Slug},
		"populate": {strconv.FormatBool(q.Populate)},
	}
	return ProductListCachePrefix + strconv.FormatInt(version, 10) + ":" + params.Encode()
}
