package logger

import (
	"os"
	"vct-survivor/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := SetLevel(level)
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, falling back to info")
	}
	return logger
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

var Module = fx.Provide(New)
