package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"vct-survivor/internal/config"
	"vct-survivor/internal/constants"
	fxmodules "vct-survivor/internal/fx"
	"vct-survivor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	survivorServer *server.SurvivorServer,
	cfg *config.Config,
	reg *prometheus.Registry,
	logger zerolog.Logger,
) {
	if cfg.AdminKey == "" {
		logger.Warn().Msg("ADMIN_KEY not set, admin procedures are disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           server.NewRouter(survivorServer, cfg, reg, logger),
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().
					Str("addr", srv.Addr).
					Dur("lock_window", cfg.LockWindow).
					Str("store_backend", cfg.StoreBackend).
					Bool("dotenv", cfg.DotEnvLoaded).
					Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
