// Package dbcache shares the database list between instances through a key-value store.
package dbcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/db"
)

// DefaultKeyPrefix namespaces the cache keys when no prefix is configured.
const DefaultKeyPrefix = "querygate:"

const listKey = "databases"

// lister is the upstream database list.
type lister interface {
	List(ctx context.Context) ([]string, error)
}

// store is the consumer interface for the shared cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedLister caches the upstream database list in a key-value store.
// Store failures are logged and the upstream list is used.
type CachedLister struct {
	inner      lister
	store      store
	key        string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner lister,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedLister {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedLister{
		inner:      inner,
		store:      s,
		key:        keyPrefix + listKey,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// List returns the cached list or fetches and caches the upstream one.
func (c *CachedLister) List(ctx context.Context) ([]string, error) {
	if dbs, ok := c.getFromCache(ctx); ok {
		c.incCache("hit")
		return dbs, nil
	}

	c.incCache("miss")

	dbs, err := c.inner.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	c.putToCache(ctx, dbs)
	return dbs, nil
}

func (c *CachedLister) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedLister) getFromCache(ctx context.Context) ([]string, bool) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached database list", zap.String("key", c.key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var dbs []string
	if err := json.Unmarshal(data, &dbs); err != nil {
		c.logger.Warn("Failed to parse cached database list", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	if dbs == nil {
		dbs = []string{}
	}
	return dbs, true
}

func (c *CachedLister) putToCache(ctx context.Context, dbs []string) {
	if dbs == nil {
		dbs = []string{}
	}
	data, err := json.Marshal(dbs)
	if err != nil {
		c.logger.Warn("Failed to encode database list", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache database list", zap.String("key", c.key), zap.Error(err))
	}
}
