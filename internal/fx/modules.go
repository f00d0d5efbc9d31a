package fx

import (
	"context"
	"vct-survivor/internal/api"
	"vct-survivor/internal/clock"
	"vct-survivor/internal/config"
	"vct-survivor/internal/database"
	"vct-survivor/internal/db"
	"vct-survivor/internal/keylock"
	"vct-survivor/internal/logger"
	"vct-survivor/internal/metrics"
	"vct-survivor/internal/parser"
	"vct-survivor/internal/repository"
	"vct-survivor/internal/server"
	"vct-survivor/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Stores struct {
	fx.Out

	Schedule    service.ScheduleStore
	Assignments service.AssignmentStore
	Picks       service.PickStore
}

// ProvideStores opens the configured backend. The sqlite handle is closed
// when the app stops.
func ProvideStores(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (Stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn().Msg("using in-memory store, ledger is lost on restart")
		m := repository.NewMemoryStore()
		return Stores{Schedule: m, Assignments: m, Picks: m}, nil
	}

	sqlDB, err := database.New(cfg, logger)
	if err != nil {
		return Stores{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})

	queries := db.New(sqlDB)
	return Stores{
		Schedule:    repository.NewScheduleRepository(sqlDB, queries, logger),
		Assignments: repository.NewAssignmentRepository(sqlDB, queries, logger),
		Picks:       repository.NewPickRepository(sqlDB, queries, logger),
	}, nil
}

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func ProvideResultsFeed(c *api.FeedClient) service.ResultsFeed {
	return c
}

// StartResultSyncer runs the syncer for the app's lifetime when a feed URL is
// configured.
func StartResultSyncer(lc fx.Lifecycle, feed *api.FeedClient, syncer *service.ResultSyncer, logger zerolog.Logger) {
	if !feed.Enabled() {
		logger.Info().Msg("RESULTS_FEED_URL not set, results syncer disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				syncer.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

var Module = fx.Options(
	config.Module,
	logger.Module,
	fx.Provide(clock.System),
	fx.Provide(keylock.New),
	fx.Provide(ProvideRegistry),
	fx.Provide(ProvideMetrics),
	// stores
	fx.Provide(ProvideStores),
	fx.Provide(fx.Annotate(parser.NewFactory, fx.As(new(parser.ParserFactory)))),
	// results feed
	fx.Provide(api.NewFeedClient),
	fx.Provide(ProvideResultsFeed),
	// svc
	fx.Provide(service.NewScheduleService),
	fx.Provide(service.NewAssignmentService),
	fx.Provide(service.NewPickService),
	fx.Provide(service.NewSurvivorService),
	fx.Provide(service.NewResultSyncer),
	fx.Invoke(StartResultSyncer),
	// server
	fx.Provide(server.NewSurvivorServer),
)
