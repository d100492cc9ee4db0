// Package config holds the archive browser configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"archive-browser/logger"
)

const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
	StorageDatabase   = "database"
)

const (
	defaultHost                = "127.0.0.1"
	defaultPort                = 8000
	defaultReadTimeout         = 30 * time.Second
	defaultWriteTimeout        = 60 * time.Second
	defaultIdleTimeout         = 120 * time.Second
	defaultFilesystemPath      = "archives"
	defaultScanTimeoutSeconds  = 10
	defaultCacheTTLSeconds     = 60
	defaultClearIntervalSecond = 1
	defaultDBPath              = "archive.db"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  logger.Config  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	Host           string        `yaml:"host" env:"ARCHIVE_HOST"`
	Port           int           `yaml:"port" env:"ARCHIVE_PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxConnections int           `yaml:"max_connections" env:"ARCHIVE_MAX_CONNECTIONS"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Type       string           `yaml:"type" env:"ARCHIVE_STORAGE_TYPE"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
	Cache      CacheConfig      `yaml:"cache"`
}

type FilesystemConfig struct {
	Path           string `yaml:"path" env:"ARCHIVE_FILESYSTEM_PATH"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ARCHIVE_FILESYSTEM_TIMEOUT_SECONDS"`
}

// Timeout is the scan budget. Zero disables it.
func (f FilesystemConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

type CacheConfig struct {
	// TTLSeconds of zero or less disables caching.
	TTLSeconds           int `yaml:"ttl_seconds" env:"ARCHIVE_CACHE_TTL_SECONDS"`
	ClearIntervalSeconds int `yaml:"clear_interval_seconds" env:"ARCHIVE_CACHE_CLEAR_INTERVAL_SECONDS"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c CacheConfig) ClearInterval() time.Duration {
	return time.Duration(c.ClearIntervalSeconds) * time.Second
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled" env:"ARCHIVE_DB_ENABLED"`
	Path    string `yaml:"path" env:"ARCHIVE_DB_PATH"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:         defaultHost,
			Port:         defaultPort,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Storage: StorageConfig{
			Type: StorageFilesystem,
			Filesystem: FilesystemConfig{
				Path:           defaultFilesystemPath,
				TimeoutSeconds: defaultScanTimeoutSeconds,
			},
			Cache: CacheConfig{
				TTLSeconds:           defaultCacheTTLSeconds,
				ClearIntervalSeconds: defaultClearIntervalSecond,
			},
		},
		Database: DatabaseConfig{Path: defaultDBPath},
	}
	cfg.Logging.SetDefaults()
	return cfg
}

// Validate checks the values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, errors.New("server.max_connections must not be negative"))
	}
	if c.Storage.Type == "" {
		errs = append(errs, errors.New("storage.type is required"))
	}
	if c.Storage.Type == StorageFilesystem && c.Storage.Filesystem.Path == "" {
		errs = append(errs, errors.New("storage.filesystem.path is required"))
	}
	if c.Storage.Filesystem.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("storage.filesystem.timeout_seconds must not be negative"))
	}
	if c.Storage.Cache.ClearIntervalSeconds < 0 {
		errs = append(errs, errors.New("storage.cache.clear_interval_seconds must not be negative"))
	}
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required when the database is enabled"))
	}
	return errors.Join(errs...)
}
