package cache_test

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"archive-browser/cache"
	"archive-browser/logger"
	"archive-browser/metrics"
	"archive-browser/models"
	"archive-browser/storage"
	"archive-browser/testutil"

	"github.com/morikuni/failure/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider returns a fresh catalog on every ListAll.
type countingProvider struct {
	scans atomic.Int32
	fail  atomic.Bool
	delay time.Duration
}

var _ storage.Provider = (*countingProvider)(nil)

func (p *countingProvider) ListAll(context.Context) (models.Catalog, error) {
	p.scans.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.fail.Load() {
		return nil, errors.New("disk on fire")
	}
	return models.Catalog{
		"example_com_home": {
			ID:       "example_com_home",
			Captures: []*models.Capture{{ID: "req_a_20240315_143022"}},
		},
	}, nil
}

func (p *countingProvider) ResourceByID(context.Context, string) (*models.Resource, error) {
	return nil, nil
}

func (p *countingProvider) CaptureByID(context.Context, string) (*models.Capture, error) {
	return nil, nil
}

func (p *countingProvider) ArtifactStream(context.Context, string, models.ArtifactKind) (io.ReadCloser, error) {
	return nil, nil
}

func (p *countingProvider) ArtifactExists(context.Context, string, models.ArtifactKind) (bool, error) {
	return false, nil
}

func (p *countingProvider) ArtifactPath(context.Context, string, models.ArtifactKind) (string, error) {
	return "", nil
}

func sameCatalog(a, b models.Catalog) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func newCache(ttl time.Duration) (*cache.Cache, *countingProvider, *testutil.Clock) {
	p := &countingProvider{}
	clock := testutil.NewClock(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	c := cache.New(p, ttl, logger.NewNop(), cache.WithClock(clock.Now))
	return c, p, clock
}

func TestGet_FreshEntryIsReused(t *testing.T) {
	c, p, clock := newCache(time.Minute)
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	second, err := c.Get(ctx)
	require.NoError(t, err)

	assert.True(t, sameCatalog(first, second))
	assert.EqualValues(t, 1, p.scans.Load())
}

func TestGet_StaleEntryRescansOnce(t *testing.T) {
	c, p, clock := newCache(time.Minute)
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)
	clock.Advance(61 * time.Second)

	second, err := c.Get(ctx)
	require.NoError(t, err)
	third, err := c.Get(ctx)
	require.NoError(t, err)

	assert.False(t, sameCatalog(first, second))
	assert.True(t, sameCatalog(second, third))
	assert.EqualValues(t, 2, p.scans.Load())
}

func TestGet_ExactlyTTLIsStale(t *testing.T) {
	c, p, clock := newCache(time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.scans.Load())
}

func TestGet_DisabledTTLAlwaysScans(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		c, p, _ := newCache(ttl)
		for range 3 {
			_, err := c.Get(context.Background())
			require.NoError(t, err)
		}
		assert.EqualValues(t, 3, p.scans.Load(), "ttl %s", ttl)
		assert.True(t, c.Stats().Disabled)
	}
}

func TestClear_ForcesRescan(t *testing.T) {
	c, p, _ := newCache(time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.NoError(t, err)
	c.Clear()
	assert.EqualValues(t, 1, p.scans.Load())

	_, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.scans.Load())
}

func TestGet_RefreshErrorKeepsPreviousEntry(t *testing.T) {
	c, p, clock := newCache(time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	p.fail.Store(true)
	_, err = c.Get(ctx)
	require.Error(t, err)
	assert.True(t, failure.Is(err, storage.ErrStorageFailure))

	stats := c.Stats()
	assert.Equal(t, 1, stats.CachedURLs)
	assert.True(t, stats.Expired)

	p.fail.Store(false)
	catalog, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 1)
	assert.EqualValues(t, 3, p.scans.Load())
}

func TestGet_ConcurrentCallersShareOneScan(t *testing.T) {
	p := &countingProvider{delay: 20 * time.Millisecond}
	c := cache.New(p, time.Hour, logger.NewNop())

	var wg sync.WaitGroup
	results := make([]models.Catalog, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			catalog, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = catalog
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, p.scans.Load())
	for _, r := range results[1:] {
		assert.True(t, sameCatalog(results[0], r))
	}
}

func TestGet_CanceledCallerDoesNotTruncateCatalog(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("example_com", "home", "req_a_20240315_143022", nil)
	p := storage.NewFilesystemProvider(tree.Root, 10*time.Second, logger.NewNop())
	c := cache.New(p, time.Hour, logger.NewNop())

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	first, err := c.Get(canceled)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, c.Stats().CachedURLs)
}

func TestStats_DoesNotWaitForScan(t *testing.T) {
	p := &countingProvider{delay: 500 * time.Millisecond}
	c := cache.New(p, time.Hour, logger.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(context.Background())
	}()

	require.Eventually(t, func() bool { return p.scans.Load() == 1 }, time.Second, time.Millisecond)
	start := time.Now()
	s := c.Stats()
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.True(t, s.Expired)
	assert.Zero(t, s.CachedURLs)
	<-done
}

func TestResourceAndCapture(t *testing.T) {
	c, _, _ := newCache(time.Minute)
	ctx := context.Background()

	r, err := c.Resource(ctx, "example_com_home")
	require.NoError(t, err)
	require.NotNil(t, r)

	missing, err := c.Resource(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	capture, err := c.Capture(ctx, "req_a_20240315_143022")
	require.NoError(t, err)
	assert.NotNil(t, capture)
}

func TestStats(t *testing.T) {
	c, _, clock := newCache(time.Minute)

	empty := c.Stats()
	assert.Zero(t, empty.AgeSeconds)
	assert.True(t, empty.Expired)
	assert.False(t, empty.Disabled)
	assert.Nil(t, empty.LastRefresh)
	assert.InDelta(t, 60, empty.TTLSeconds, 0)

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	s := c.Stats()
	assert.InDelta(t, 30, s.AgeSeconds, 0.001)
	assert.False(t, s.Expired)
	assert.Equal(t, 1, s.CachedURLs)
	require.NotNil(t, s.LastRefresh)

	// Stats never refreshes.
	clock.Advance(time.Hour)
	assert.True(t, c.Stats().Expired)
	assert.Equal(t, 1, c.Stats().CachedURLs)
}

func TestMetricsHooks(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p := &countingProvider{}
	c := cache.New(p, time.Hour, logger.NewNop(), cache.WithMetrics(m))
	ctx := context.Background()

	_, _ = c.Get(ctx)
	_, _ = c.Get(ctx)
	c.Clear()
	p.fail.Store(true)
	_, _ = c.Get(ctx)

	assert.InDelta(t, 1, promtestutil.ToFloat64(m.CacheHits), 0)
	assert.InDelta(t, 2, promtestutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(m.CacheClears), 0)
	assert.InDelta(t, 1, promtestutil.ToFloat64(m.CacheRefreshErrors), 0)
}
