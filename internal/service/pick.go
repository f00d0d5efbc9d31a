package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"vct-survivor/internal/clock"
	"vct-survivor/internal/config"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/keylock"
	"vct-survivor/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type PickService struct {
	schedule    *ScheduleService
	assignments AssignmentStore
	picks       PickStore
	locks       *keylock.Map
	clock       clock.Clock
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	lockWindow  time.Duration
}

func NewPickService(schedule *ScheduleService, assignments AssignmentStore, picks PickStore, locks *keylock.Map, clk clock.Clock, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *PickService {
	return &PickService{
		schedule:    schedule,
		assignments: assignments,
		picks:       picks,
		locks:       locks,
		clock:       clk,
		metrics:     m,
		logger:      logger,
		lockWindow:  cfg.LockWindow,
	}
}

func (s *PickService) LockWindow() time.Duration { return s.lockWindow }

// Pickable reports whether now is strictly before the match's lock deadline.
func (s *PickService) Pickable(m domain.Match, now time.Time) bool {
	deadline, ok := m.LockDeadline(s.lockWindow)
	return ok && now.Before(deadline)
}

// CanPick is false for unknown matches and matches without a start time.
func (s *PickService) CanPick(ctx context.Context, matchID string) (bool, error) {
	snap, err := s.schedule.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	m, ok := snap.Match(matchID)
	if !ok {
		return false, nil
	}
	return s.Pickable(m, s.clock.Now()), nil
}

// RecordPick appends the user's single pick for stageID. Checks run in order:
// duplicate, unknown match, invalid team, locked, not the assigned match.
func (s *PickService) RecordPick(ctx context.Context, user string, stageID int, matchID, team string) (*domain.Pick, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, s.reject(domain.ErrInvalidUser, "invalid_user")
	}

	unlock := s.locks.Lock(ledgerKey(user, stageID))
	defer unlock()

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	existing, err := s.picks.GetPick(dbCtx, user, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	if existing != nil {
		return nil, s.reject(fmt.Errorf("%w: %s already picked %s in stage %d", domain.ErrDuplicatePick, user, existing.Team, stageID), "duplicate")
	}

	snap, err := s.schedule.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := snap.Match(matchID)
	if !ok || m.StageID != stageID {
		return nil, s.reject(fmt.Errorf("%w: %s in stage %d", domain.ErrUnknownMatch, matchID, stageID), "unknown_match")
	}
	if !m.HasTeam(team) {
		return nil, s.reject(fmt.Errorf("%w: %q is not %q or %q", domain.ErrInvalidTeam, team, m.TeamA, m.TeamB), "invalid_team")
	}

	now := s.clock.Now()
	if !s.Pickable(m, now) {
		return nil, s.reject(fmt.Errorf("%w: match %s", domain.ErrLocked, matchID), "locked")
	}

	a, err := s.assignments.GetAssignment(dbCtx, user, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if a == nil || a.MatchID != matchID {
		return nil, s.reject(fmt.Errorf("%w: %s is not assigned %s", domain.ErrNotAssigned, user, matchID), "not_assigned")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pick id: %w", err)
	}
	p := domain.Pick{
		ID:       id,
		User:     user,
		StageID:  stageID,
		MatchID:  matchID,
		Team:     team,
		PickedAt: now,
	}
	if err := s.picks.InsertPick(dbCtx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicatePick) {
			return nil, s.reject(err, "duplicate")
		}
		s.logger.Error().Err(err).Str("user", user).Int("stage_id", stageID).Msg("failed to store pick")
		return nil, fmt.Errorf("failed to store pick: %w", err)
	}

	s.metrics.Picks.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str("user", user).
		Int("stage_id", stageID).
		Str("match_id", matchID).
		Str("team", team).
		Msg("pick recorded")
	return &p, nil
}

func (s *PickService) reject(err error, result string) error {
	s.metrics.Picks.WithLabelValues(result).Inc()
	s.logger.Debug().Err(err).Str("result", result).Msg("pick rejected")
	return err
}

func (s *PickService) GetPick(ctx context.Context, user string, stageID int) (*domain.Pick, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.picks.GetPick(ctx, user, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	return p, nil
}
