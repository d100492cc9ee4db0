// Package cache memoizes the archive catalog for a fixed time-to-live.
package cache

import (
	"context"
	"sync"
	"time"

	"archive-browser/logger"
	"archive-browser/metrics"
	"archive-browser/models"
	"archive-browser/storage"

	"github.com/morikuni/failure/v2"
)

// Cache holds at most one catalog produced by a provider scan. The entry
// goes stale lazily once its age reaches the ttl; a ttl of zero or less
// disables caching so every Get rescans.
type Cache struct {
	provider storage.Provider
	ttl      time.Duration
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	// refresh serializes scans, so at most one runs per cache. mu guards
	// the entry only and is never held across a scan.
	refresh    sync.Mutex
	mu         sync.RWMutex
	catalog    models.Catalog
	producedAt time.Time
}

type Option func(*Cache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(provider storage.Provider, ttl time.Duration, log logger.Logger, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		ttl:      ttl,
		log:      log.With(logger.String("component", "cache")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached catalog, rescanning first when the cache is empty
// or stale. On refresh failure the previous entry is kept and the error is
// returned as storage.ErrStorageFailure. The scan runs detached from ctx
// cancellation: its result is shared by every reader.
func (c *Cache) Get(ctx context.Context) (models.Catalog, error) {
	if catalog, ok := c.fresh(); ok {
		c.metrics.CacheHit()
		return catalog, nil
	}

	c.refresh.Lock()
	defer c.refresh.Unlock()
	if catalog, ok := c.fresh(); ok {
		c.metrics.CacheHit()
		return catalog, nil
	}

	c.metrics.CacheMiss()
	catalog, err := c.provider.ListAll(context.WithoutCancel(ctx))
	if err != nil {
		c.metrics.CacheRefreshError()
		c.log.Error("Failed to refresh catalog", logger.Error(err))
		return nil, failure.Translate(err, storage.ErrStorageFailure,
			failure.Message("Failed to refresh archive catalog"),
		)
	}
	if catalog == nil {
		catalog = models.Catalog{}
	}

	c.mu.Lock()
	c.catalog = catalog
	c.producedAt = c.now()
	c.mu.Unlock()
	c.log.Debug("Catalog refreshed", logger.Int("resources", len(catalog)))
	return catalog, nil
}

func (c *Cache) fresh() (models.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil || c.expired(c.now()) {
		return nil, false
	}
	return c.catalog, true
}

// Resource looks up one resource through the cached catalog.
func (c *Cache) Resource(ctx context.Context, id string) (*models.Resource, error) {
	catalog, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog[id], nil
}

// Capture looks up one capture through the cached catalog.
func (c *Cache) Capture(ctx context.Context, id string) (*models.Capture, error) {
	catalog, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FindCapture(id), nil
}

// Clear drops the entry. The next Get rescans.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.catalog = nil
	c.producedAt = time.Time{}
	c.mu.Unlock()

	c.metrics.CacheClear()
	c.log.Info("Cache cleared")
}

// Stats is a read-only view of the cache state.
type Stats struct {
	AgeSeconds  float64    `json:"cache_age_seconds"`
	TTLSeconds  float64    `json:"ttl_seconds"`
	Expired     bool       `json:"cache_expired"`
	Disabled    bool       `json:"cache_disabled"`
	CachedURLs  int        `json:"cached_urls_count"`
	LastRefresh *time.Time `json:"last_refresh_timestamp"`
}

// Stats reads the entry without waiting for a scan in progress.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		TTLSeconds: c.ttl.Seconds(),
		Disabled:   c.ttl <= 0,
		Expired:    true,
	}
	if c.catalog == nil {
		return s
	}

	now := c.now()
	produced := c.producedAt
	s.AgeSeconds = now.Sub(produced).Seconds()
	s.Expired = c.expired(now)
	s.CachedURLs = len(c.catalog)
	s.LastRefresh = &produced
	return s
}

func (c *Cache) expired(now time.Time) bool {
	return c.ttl <= 0 || now.Sub(c.producedAt) >= c.ttl
}
