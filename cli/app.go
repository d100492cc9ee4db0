package cli

import (
	"context"
	"errors"

	"archive-browser/cache"
	"archive-browser/config"
	"archive-browser/database"
	"archive-browser/handlers"
	"archive-browser/logger"
	"archive-browser/metrics"
	"archive-browser/storage"

	"github.com/morikuni/failure/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// services is everything serve and mcp need, built from one config.
type services struct {
	cfg      *config.Config
	log      logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	db       *gorm.DB
	history  *database.ScanHistory
	provider storage.Provider
	cache    *cache.Cache
}

func newServices(configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, failure.Translate(err, ErrInvalidConfig,
			failure.Message("Failed to load configuration"),
			failure.Context{"path": configPath, "error": err.Error()},
		)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, failure.Translate(err, ErrInvalidConfig, failure.Message("Failed to create logger"))
	}

	s := &services{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = metrics.New(s.registry)

	observers := []storage.ScanObserver{s.metrics}
	if cfg.Database.Enabled {
		s.db, err = database.Open(cfg.Database.Path, log)
		if err != nil {
			return nil, failure.Wrap(err, failure.Message("Failed to open scan history database"))
		}
		s.history = database.NewScanHistory(s.db, log)
		observers = append(observers, s.history)
	}

	s.provider, err = storage.NewProvider(cfg.Storage, log, storage.WithObservers(observers...))
	if err != nil {
		s.close()
		return nil, err
	}
	s.cache = cache.New(s.provider, cfg.Storage.Cache.TTL(), log, cache.WithMetrics(s.metrics))
	return s, nil
}

func (s *services) handler(version string) *handlers.Handler {
	return handlers.New(handlers.Options{
		Cache:         s.cache,
		Provider:      s.provider,
		History:       s.history,
		Gatherer:      s.registry,
		Logger:        s.log,
		Version:       version,
		ClearInterval: s.cfg.Storage.Cache.ClearInterval(),
	})
}

// warm performs the first scan so an unreadable root fails startup.
func (s *services) warm(ctx context.Context) error {
	catalog, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}
	s.log.Info("Catalog loaded", logger.Int("resources", len(catalog)), logger.Int("captures", catalog.TotalCaptures()))
	return nil
}

func (s *services) close() {
	var errs []error
	if s.db != nil {
		errs = append(errs, database.Close(s.db))
	}
	errs = append(errs, s.log.Sync())
	if err := errors.Join(errs...); err != nil {
		s.log.Debug("Shutdown cleanup reported errors", logger.Error(err))
	}
}
