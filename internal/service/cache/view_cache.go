// Package cache holds built views between refreshes.
//
// An entry is fresh for FreshTTL after it was fetched. Stale entries are kept
// for Retention so a failed refresh can still show the last good view.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"PredBoard/internal/domain/repository"
	pcache "PredBoard/pkg/cache"
	applogger "PredBoard/pkg/logger"
)

const keyPrefix = "view"

// Entry is a cached value and the time it was fetched from the backend.
type Entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Option func(*ViewCache)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ViewCache) { c.now = now }
}

func WithMetrics(m repository.Metrics) Option {
	return func(c *ViewCache) { c.metrics = m }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *ViewCache) { c.logger = l }
}

// ViewCache stores Entry values in a pkg/cache.Service. Writes are
// last-writer-wins.
type ViewCache struct {
	store     pcache.Service
	fresh     time.Duration
	retention time.Duration
	now       func() time.Time
	metrics   repository.Metrics
	logger    *applogger.Logger
}

// New builds a ViewCache. Retention is raised to fresh if it is shorter.
func New(store pcache.Service, fresh, retention time.Duration, opts ...Option) *ViewCache {
	if retention < fresh {
		retention = fresh
	}
	c := &ViewCache{
		store:     store,
		fresh:     fresh,
		retention: retention,
		now:       time.Now,
		metrics:   repository.NopMetrics{},
		logger:    applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the store key for a view and its parameters.
func Key(view string, parts ...string) string {
	k := pcache.GenerateKey(keyPrefix, view)
	for _, p := range parts {
		if p != "" {
			k = pcache.GenerateKey(k, strings.ToUpper(p))
		}
	}
	return k
}

// Now returns the cache clock's current time.
func (c *ViewCache) Now() time.Time { return c.now() }

// FreshTTL is the freshness window.
func (c *ViewCache) FreshTTL() time.Duration { return c.fresh }

// IsFresh reports whether an entry fetched at t is still inside the window.
func (c *ViewCache) IsFresh(t time.Time) bool {
	return !t.IsZero() && c.now().Sub(t) < c.fresh
}

// Lookup returns the entry stored under key regardless of age.
func Lookup[T any](ctx context.Context, c *ViewCache, key string) (Entry[T], bool) {
	e, err := pcache.GetTyped[Entry[T]](ctx, c.store, key)
	if err != nil {
		if !errors.Is(err, pcache.ErrCacheMiss) {
			c.logger.Warn("view cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		return Entry[T]{}, false
	}
	return e, true
}

// Fresh returns the value under key only if it is inside the freshness
// window. Hits and misses are recorded against view.
func Fresh[T any](ctx context.Context, c *ViewCache, view, key string) (T, bool) {
	e, ok := Lookup[T](ctx, c, key)
	if ok && c.IsFresh(e.FetchedAt) {
		c.metrics.RecordCache(view, true)
		return e.Value, true
	}
	c.metrics.RecordCache(view, false)
	var zero T
	return zero, false
}

// Put stores v under key stamped with the current time.
func Put[T any](ctx context.Context, c *ViewCache, key string, v T) Entry[T] {
	e := Entry[T]{Value: v, FetchedAt: c.now()}
	if err := c.store.Set(ctx, key, e, c.retention); err != nil {
		c.logger.Warn("view cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return e
}

// Invalidate drops every entry of the given views.
func (c *ViewCache) Invalidate(ctx context.Context, views ...string) {
	for _, v := range views {
		pattern := pcache.BuildPattern(pcache.GenerateKey(keyPrefix, v) + ":")
		if err := c.store.Delete(ctx, pcache.GenerateKey(keyPrefix, v)); err != nil {
			c.logger.Warn("view cache delete failed", applogger.String("view", v), applogger.Error(err))
		}
		if err := c.store.DeleteByPattern(ctx, pattern); err != nil {
			c.logger.Warn("view cache delete failed", applogger.String("view", v), applogger.Error(err))
		}
	}
}
