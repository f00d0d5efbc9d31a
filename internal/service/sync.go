package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vct-survivor/internal/api"
	"vct-survivor/internal/config"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/metrics"

	"github.com/rs/zerolog"
)

type ResultsFeed interface {
	FetchResults(ctx context.Context) ([]api.MatchResult, error)
}

type rateLimited interface {
	GetRateLimitInfo() api.RateLimitInfo
}

// ResultSyncer applies winners from the results feed through
// ScheduleService.SetWinner, so feed data gets the same validation as an
// admin update.
type ResultSyncer struct {
	feed     ResultsFeed
	schedule *ScheduleService
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
}

func NewResultSyncer(feed ResultsFeed, schedule *ScheduleService, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *ResultSyncer {
	return &ResultSyncer{
		feed:     feed,
		schedule: schedule,
		metrics:  m,
		logger:   logger,
		interval: cfg.ResultsSyncInterval,
	}
}

// SyncOnce returns how many winners changed. Entries for unknown matches or
// teams are skipped and logged.
func (s *ResultSyncer) SyncOnce(ctx context.Context) (int, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	results, err := s.feed.FetchResults(apiCtx)
	if err != nil {
		s.metrics.ResultSyncs.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Msg("failed to fetch results feed")
		return 0, fmt.Errorf("failed to fetch results feed: %w", err)
	}

	snap, err := s.schedule.Snapshot(ctx)
	if err != nil {
		s.metrics.ResultSyncs.WithLabelValues("failed").Inc()
		return 0, err
	}

	applied := 0
	for _, r := range results {
		if r.Winner == "" {
			continue
		}
		if m, ok := snap.Match(r.MatchID); ok && m.Winner == r.Winner {
			continue
		}

		err := s.schedule.SetWinner(ctx, r.MatchID, r.Winner)
		switch {
		case errors.Is(err, domain.ErrUnknownMatch), errors.Is(err, domain.ErrInvalidTeam):
			s.logger.Warn().Err(err).Str("match_id", r.MatchID).Msg("skipping feed result")
		case err != nil:
			s.metrics.ResultSyncs.WithLabelValues("failed").Inc()
			return applied, err
		default:
			applied++
		}
	}

	s.metrics.ResultSyncs.WithLabelValues("ok").Inc()
	ev := s.logger.Debug().Int("result_count", len(results)).Int("applied", applied)
	if rl, ok := s.feed.(rateLimited); ok {
		info := rl.GetRateLimitInfo()
		ev = ev.Int("rate_limit_remaining", info.Remaining).Int("rate_limit_reset", info.Reset)
	}
	ev.Msg("results feed synced")
	return applied, nil
}

// Run syncs immediately and then on every interval until ctx is done.
func (s *ResultSyncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("results syncer started")
	for {
		_, _ = s.SyncOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("results syncer stopped")
			return
		case <-ticker.C:
		}
	}
}
