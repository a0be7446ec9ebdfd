package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	BackendFS   = "fs"
	BackendBolt = "bolt"
)

// ServiceConfig is the resolved cartd runtime configuration. A zero timeout
// disables the matching http.Server limit.
type ServiceConfig struct {
	ID                string
	ListenAddr        string
	CorsOrigins       []string
	MaxUploadBytes    int64
	CacheSize         int
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	Store             StoreConfig
}

// StoreConfig selects and locates the cartridge store.
type StoreConfig struct {
	Backend string
	Path    string
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ID:                "cartd",
		ListenAddr:        ":9300",
		CorsOrigins:       []string{"http://localhost:3000"},
		MaxUploadBytes:    1 << 20,
		CacheSize:         64,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		Store: StoreConfig{
			Backend: BackendFS,
			Path:    "local/carts",
		},
	}
}

// cartd config.toml key mapping to ServiceConfig.
type fileConfig struct {
	ID                string   `toml:"id"`
	Addr              string   `toml:"addr"`
	CorsOrigins       []string `toml:"cors_origins"`
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`
	CacheSize         int      `toml:"cache_size"`
	ReadTimeout       string   `toml:"read_timeout"`
	ReadHeaderTimeout string   `toml:"read_header_timeout"`
	WriteTimeout      string   `toml:"write_timeout"`
	StoreBackend      string   `toml:"store_backend"`
	StorePath         string   `toml:"store_path"`
}

// LoadServiceConfig overlays the keys present in the TOML file at path on
// DefaultServiceConfig and validates the result.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("load cartd config: %w", err)
	}

	if meta.IsDefined("id") {
		cfg.ID = strings.TrimSpace(raw.ID)
	}
	if meta.IsDefined("addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("max_upload_bytes") {
		cfg.MaxUploadBytes = raw.MaxUploadBytes
	}
	if meta.IsDefined("cache_size") {
		cfg.CacheSize = raw.CacheSize
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"read_header_timeout", raw.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return ServiceConfig{}, fmt.Errorf("load cartd config: %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("store_backend") {
		cfg.Store.Backend = strings.ToLower(strings.TrimSpace(raw.StoreBackend))
	}
	if meta.IsDefined("store_path") {
		cfg.Store.Path = strings.TrimSpace(raw.StorePath)
	}

	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, fmt.Errorf("load cartd config: %w", err)
	}
	return cfg, nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive")
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must not be negative")
	}
	if cfg.ReadHeaderTimeout < 0 {
		return fmt.Errorf("read_header_timeout must not be negative")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must not be negative")
	}
	return ValidateStoreConfig(cfg.Store)
}

func ValidateStoreConfig(cfg StoreConfig) error {
	switch cfg.Backend {
	case BackendFS, BackendBolt:
	default:
		return fmt.Errorf("unsupported store_backend %q (expected %s or %s)", cfg.Backend, BackendFS, BackendBolt)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return fmt.Errorf("store_path is required")
	}
	return nil
}
