package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/tincart/internal/config"
	"github.com/danmuck/tincart/internal/logging"
	"github.com/danmuck/tincart/internal/observability"
	"github.com/danmuck/tincart/internal/server"
	"github.com/danmuck/tincart/internal/store"
)

func main() {
	configPath := flag.String("config", "cmd/cartd/config.toml", "cartd config path")
	flag.Parse()

	observability.InitLogger("cartd")
	logging.SetLevel(os.Getenv(logging.EnvLogLevel))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load cartd config")
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open cartridge store")
	}
	defer st.Close()
	log.Info().Str("backend", cfg.Store.Backend).Str("path", cfg.Store.Path).Msg("cartridge store opened")

	srv, err := server.New(cfg, st)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build cartd")
	}
	if err := srv.Serve(); err != nil {
		log.Error().Err(err).Msg("cartd stopped")
	}
}

// loadConfig falls back to defaults when path does not exist.
func loadConfig(path string) (config.ServiceConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("config not found, using defaults")
		return config.DefaultServiceConfig(), nil
	}
	cfg, err := config.LoadServiceConfig(path)
	if err != nil {
		return config.ServiceConfig{}, err
	}
	log.Info().Str("path", path).Msg("loaded cartd config")
	return cfg, nil
}
