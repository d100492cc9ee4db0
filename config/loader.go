package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// legacyCacheTTLEnv is read only when ARCHIVE_CACHE_TTL_SECONDS is unset.
const legacyCacheTTLEnv = "SCANNER_CACHE_TTL"

// Load builds the configuration from defaults, the optional YAML file at
// path, .env files and environment variables, in that order of precedence
// (later wins). A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	applyLegacyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetConfigPath returns CONFIG_PATH when set, else defaultPath.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

// loadEnvFiles loads ENV_FILE alone when set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func applyLegacyEnv(cfg *Config) {
	if os.Getenv("ARCHIVE_CACHE_TTL_SECONDS") != "" {
		return
	}
	if v := os.Getenv(legacyCacheTTLEnv); v != "" {
		if ttl, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Storage.Cache.TTLSeconds = ttl
		}
	}
}

// applyEnvOverrides sets every field carrying an env tag from the
// environment. Config only holds string, int and bool leaves; values that
// do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	applyEnv(reflect.ValueOf(cfg).Elem())
}

func applyEnv(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if field.Kind() == reflect.Struct {
			applyEnv(field)
			continue
		}

		key := t.Field(i).Tag.Get("env")
		if key == "" {
			continue
		}
		val := strings.TrimSpace(os.Getenv(key))
		if val == "" {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Int:
			if n, err := strconv.Atoi(val); err == nil {
				field.SetInt(int64(n))
			}
		case reflect.Bool:
			switch strings.ToLower(val) {
			case "true", "1", "yes":
				field.SetBool(true)
			case "false", "0", "no":
				field.SetBool(false)
			}
		}
	}
}
