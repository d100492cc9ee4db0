package storage

import (
	"path/filepath"

	"archive-browser/config"
	"archive-browser/logger"

	"github.com/morikuni/failure/v2"
)

// NewProvider builds the provider named by cfg.Type. Relative filesystem
// roots are resolved against the working directory.
func NewProvider(cfg config.StorageConfig, log logger.Logger, opts ...Option) (Provider, error) {
	switch cfg.Type {
	case config.StorageFilesystem:
		root, err := filepath.Abs(cfg.Filesystem.Path)
		if err != nil {
			return nil, failure.Translate(err, ErrInvalidConfig,
				failure.Message("Invalid filesystem path"),
				failure.Context{"path": cfg.Filesystem.Path},
			)
		}
		log.Info("Using filesystem storage", logger.String("root", root))
		return NewFilesystemProvider(root, cfg.Filesystem.Timeout(), log, opts...), nil

	case config.StorageS3, config.StorageDatabase:
		return nil, failure.New(ErrUnsupported,
			failure.Message("Storage type is not yet implemented"),
			failure.Context{"type": cfg.Type},
		)

	default:
		return nil, failure.New(ErrInvalidConfig,
			failure.Message("Unknown storage type"),
			failure.Context{"type": cfg.Type},
		)
	}
}
