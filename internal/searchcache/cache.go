// Package searchcache memoizes searchcore.Engine.Search results in Redis,
// deduplicating concurrent identical queries with singleflight.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/internal/searchcore"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/config"
	"github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/metrics"
	pkgredis "github.com/ProgrammerXX1/CUDA-PLAGIARISM/pkg/redis"
)

const keyPrefix = "plagiarism:search:"

// QueryCache wraps a searchcore.Engine with a Redis-backed result cache
// keyed by normalized query text and top-N.
type QueryCache struct {
	engine  *searchcore.Engine
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache fronting engine with client. If m is non-nil,
// every cache lookup reports a hit or miss to m.CacheHitsTotal/CacheMissesTotal.
func New(engine *searchcore.Engine, client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		engine:  engine,
		client:  client,
		cfg:     cfg,
		logger:  slog.Default().With("component", "search-query-cache"),
		metrics: m,
	}
}

// Search returns cached hits for (query, top) if present; otherwise it runs
// the query against the engine exactly once even under concurrent
// duplicate requests, caches the result, and returns it.
func (c *QueryCache) Search(ctx context.Context, query string, top int) ([]searchcore.Hit, error) {
	key := c.buildKey(query, top)
	if hits, ok := c.get(ctx, key); ok {
		c.recordHit()
		return hits, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		if hits, ok := c.get(ctx, key); ok {
			return hits, nil
		}
		hits, err := c.engine.Search(query, top)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, hits)
		return hits, nil
	})
	if err != nil {
		return nil, err
	}
	c.recordMiss()
	return val.([]searchcore.Hit), nil
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Invalidate drops every cached search result. Callers should invoke this
// after the engine loads a new index, since hit sets and scores are only
// valid against the index that produced them.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Info("search cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit/miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) ([]searchcore.Hit, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var hits []searchcore.Hit
	if err := json.Unmarshal([]byte(data), &hits); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return hits, true
}

func (c *QueryCache) set(ctx context.Context, key string, hits []searchcore.Hit) {
	data, err := json.Marshal(hits)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) buildKey(query string, top int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	raw := fmt.Sprintf("%s|top=%d", normalized, top)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
