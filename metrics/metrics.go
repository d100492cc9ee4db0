// Package metrics exposes Prometheus instrumentation for scans and the
// catalog cache. A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"

	"archive-browser/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsNamespace = "archive"

const (
	resultOK      = "ok"
	resultPartial = "partial"
	resultError   = "error"
)

type Metrics struct {
	ScansTotal    *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	ScanResources prometheus.Gauge
	ScanCaptures  prometheus.Gauge

	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheClears        prometheus.Counter
	CacheRefreshErrors prometheus.Counter
}

// New creates and registers all metrics on reg, or on the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{}
	m.initScanMetrics(factory)
	m.initCacheMetrics(factory)
	return m
}

func (m *Metrics) initScanMetrics(factory promauto.Factory) {
	m.ScansTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "scans_total",
			Help:      "Total number of archive scans by result",
		},
		[]string{"result"},
	)

	m.ScanDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of archive scans in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~41s
		},
	)

	m.ScanResources = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "scan_resources",
			Help:      "Resources found by the most recent scan",
		},
	)

	m.ScanCaptures = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "scan_captures",
			Help:      "Captures found by the most recent scan",
		},
	)
}

func (m *Metrics) initCacheMetrics(factory promauto.Factory) {
	m.CacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cache_hits_total",
		Help:      "Catalog reads served from the cache",
	})
	m.CacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cache_misses_total",
		Help:      "Catalog reads that triggered a rescan",
	})
	m.CacheClears = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cache_clears_total",
		Help:      "Manual cache invalidations",
	})
	m.CacheRefreshErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cache_refresh_errors_total",
		Help:      "Cache refreshes that failed",
	})
}

// ObserveScan records one scan pass.
func (m *Metrics) ObserveScan(_ context.Context, report models.ScanReport, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.ScansTotal.WithLabelValues(resultError).Inc()
		return
	case report.Partial:
		m.ScansTotal.WithLabelValues(resultPartial).Inc()
	default:
		m.ScansTotal.WithLabelValues(resultOK).Inc()
	}
	m.ScanDuration.Observe(report.Duration.Seconds())
	m.ScanResources.Set(float64(report.Resources))
	m.ScanCaptures.Set(float64(report.Captures))
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) CacheClear() {
	if m != nil {
		m.CacheClears.Inc()
	}
}

func (m *Metrics) CacheRefreshError() {
	if m != nil {
		m.CacheRefreshErrors.Inc()
	}
}
