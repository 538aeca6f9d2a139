// Package cache stores ranked query results in Redis. Queries that tokenize
// to the same bag of terms share an entry, and concurrent misses for one key
// compute the ranking once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/metrics"
)

const keyPrefix = "ranked:"

// Store holds encoded rankings. *redis.Client from pkg/redis implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

type RankedCache struct {
	store   Store
	ttl     time.Duration
	scope   string
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. scope separates entries of different index
// builds sharing one Redis; m may be nil.
func New(store Store, ttl time.Duration, scope string, m *metrics.Metrics) *RankedCache {
	return &RankedCache{
		store:   store,
		ttl:     ttl,
		scope:   scope,
		metrics: m,
		logger:  slog.Default().With("component", "ranked-cache"),
	}
}

// Get looks up the ranking for terms. Store failures count as misses.
func (c *RankedCache) Get(ctx context.Context, terms []string, limit int) ([]ranker.ScoredDoc, bool) {
	key := c.Key(terms, limit)
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if !ok {
		c.miss()
		return nil, false
	}
	var docs []ranker.ScoredDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "key", key)
	return docs, true
}

func (c *RankedCache) Set(ctx context.Context, terms []string, limit int, docs []ranker.ScoredDoc) {
	key := c.Key(terms, limit)
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking or computes, stores and returns
// it. The bool reports a cache hit.
func (c *RankedCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	limit int,
	compute func() []ranker.ScoredDoc,
) ([]ranker.ScoredDoc, bool) {
	if docs, ok := c.Get(ctx, terms, limit); ok {
		return docs, true
	}
	key := c.Key(terms, limit)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		docs := compute()
		c.Set(ctx, terms, limit, docs)
		return docs, nil
	})
	return val.([]ranker.ScoredDoc), false
}

// Invalidate removes every entry in this cache's scope.
func (c *RankedCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+c.scope+":*")
	if err != nil {
		return fmt.Errorf("invalidating ranked cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *RankedCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Key hashes the sorted term bag and limit, so word order does not matter
// but repetition does.
func (c *RankedCache) Key(terms []string, limit int) string {
	sorted := append([]string(nil), terms...)
	sort.Strings(sorted)
	raw := fmt.Sprintf("%s:limit=%d", strings.Join(sorted, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.scope, hash[:16])
}

func (c *RankedCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
