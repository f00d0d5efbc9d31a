package service

import (
	"context"
	"fmt"
	"strings"
	"vct-survivor/internal/clock"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/keylock"
	"vct-survivor/internal/metrics"

	"github.com/rs/zerolog"
)

type AssignmentService struct {
	schedule *ScheduleService
	store    AssignmentStore
	picks    PickStore
	locks    *keylock.Map
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewAssignmentService(schedule *ScheduleService, store AssignmentStore, picks PickStore, locks *keylock.Map, clk clock.Clock, m *metrics.Metrics, logger zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		schedule: schedule,
		store:    store,
		picks:    picks,
		locks:    locks,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

// GetOrCreate returns the user's match for stageID, creating the assignment
// on first call and replacing it only once its match has left the eligible
// pool. Once the user has picked, the assignment is frozen on the picked
// match. An empty pool yields domain.ErrNoEligibleMatch and touches nothing.
func (s *AssignmentService) GetOrCreate(ctx context.Context, user string, stageID int) (*domain.Assignment, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, domain.ErrInvalidUser
	}

	unlock := s.locks.Lock(ledgerKey(user, stageID))
	defer unlock()

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	pick, err := s.picks.GetPick(dbCtx, user, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}
	existing, err := s.store.GetAssignment(dbCtx, user, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if pick != nil {
		s.metrics.Assignments.WithLabelValues("picked").Inc()
		if existing != nil && existing.MatchID == pick.MatchID {
			return existing, nil
		}
		s.logger.Warn().
			Str("user", user).
			Int("stage_id", stageID).
			Str("match_id", pick.MatchID).
			Msg("assignment rebuilt from pick")
		return &domain.Assignment{User: user, StageID: stageID, MatchID: pick.MatchID, AssignedAt: pick.PickedAt}, nil
	}

	pool, err := s.schedule.EligibleMatches(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		s.metrics.Assignments.WithLabelValues("no_pool").Inc()
		return nil, fmt.Errorf("%w: stage %d", domain.ErrNoEligibleMatch, stageID)
	}

	salt := ""
	outcome := "created"
	if existing != nil {
		if inPool(pool, existing.MatchID) {
			s.metrics.Assignments.WithLabelValues("kept").Inc()
			return existing, nil
		}
		salt = constants.ReassignSalt
		outcome = "reassigned"
	}

	matchID, _ := SelectMatch(pool, user, stageID, salt)
	a := domain.Assignment{
		User:       user,
		StageID:    stageID,
		MatchID:    matchID,
		AssignedAt: s.clock.Now(),
	}
	if err := s.store.PutAssignment(dbCtx, a); err != nil {
		s.logger.Error().Err(err).Str("user", user).Int("stage_id", stageID).Msg("failed to store assignment")
		return nil, fmt.Errorf("failed to store assignment: %w", err)
	}

	s.metrics.Assignments.WithLabelValues(outcome).Inc()
	ev := s.logger.Info().
		Str("user", user).
		Int("stage_id", stageID).
		Str("match_id", matchID).
		Int("pool_size", len(pool))
	if existing != nil {
		ev = ev.Str("previous_match_id", existing.MatchID)
	}
	ev.Msgf("assignment %s", outcome)

	return &a, nil
}

func inPool(pool []domain.Match, matchID string) bool {
	for _, m := range pool {
		if m.ID == matchID {
			return true
		}
	}
	return false
}
