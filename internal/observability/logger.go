package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/tincart/internal/logging"
)

// InitLogger configures the runtime profile once and tags the global logger
// with app. Later calls stack another app field, so binaries call it once.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
