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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AssignedMatch is an assignment joined with its match and lock state.
type AssignedMatch struct {
	Assignment domain.Assignment
	Match      domain.Match
	// zero when the match has no usable start time
	LockDeadline      time.Time
	LockDeadlineLocal time.Time
	CanPick           bool
	// the match is no longer in the schedule; Match carries only its id
	Unscheduled bool
}

type Dashboard struct {
	User        string
	Alive       bool
	ActiveStage *domain.Stage
	Assigned    *AssignedMatch
	Pick        *domain.Pick
	// set when eliminated users are not assigned
	AssignmentSkipped bool
	Results           []domain.Result
	Leaderboard       []domain.LeaderboardEntry
	Timezone          string
}

// SurvivorService composes the engines into the views the API serves.
type SurvivorService struct {
	schedule    *ScheduleService
	assignments *AssignmentService
	picks       *PickService
	pickStore   PickStore
	clock       clock.Clock
	logger      zerolog.Logger

	assignEliminated bool
	displayTZ        *time.Location
}

func NewSurvivorService(schedule *ScheduleService, assignments *AssignmentService, picks *PickService, pickStore PickStore, clk clock.Clock, cfg *config.Config, logger zerolog.Logger) *SurvivorService {
	tz := cfg.DisplayTZ
	if tz == nil {
		tz = time.UTC
	}
	return &SurvivorService{
		schedule:         schedule,
		assignments:      assignments,
		picks:            picks,
		pickStore:        pickStore,
		clock:            clk,
		logger:           logger,
		assignEliminated: cfg.AssignEliminated,
		displayTZ:        tz,
	}
}

// Assign resolves the user's assignment for stageID and joins it with its
// match. A picked match that was dropped from the schedule is returned as
// an unscheduled stub rather than an error.
func (s *SurvivorService) Assign(ctx context.Context, user string, stageID int) (*AssignedMatch, error) {
	a, err := s.assignments.GetOrCreate(ctx, user, stageID)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, *a)
}

func (s *SurvivorService) describe(ctx context.Context, a domain.Assignment) (*AssignedMatch, error) {
	snap, err := s.schedule.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := snap.Match(a.MatchID)
	if !ok {
		s.logger.Warn().
			Str("user", a.User).
			Int("stage_id", a.StageID).
			Str("match_id", a.MatchID).
			Msg("assigned match left the schedule")
		return &AssignedMatch{
			Assignment:  a,
			Match:       domain.Match{ID: a.MatchID, StageID: a.StageID},
			Unscheduled: true,
		}, nil
	}

	out := &AssignedMatch{
		Assignment: a,
		Match:      m,
		CanPick:    s.picks.Pickable(m, s.clock.Now()),
	}
	if deadline, ok := m.LockDeadline(s.picks.LockWindow()); ok {
		out.LockDeadline = deadline
		out.LockDeadlineLocal = deadline.In(s.displayTZ)
	}
	return out, nil
}

// Results judges the user's picks, or every pick when user is blank.
func (s *SurvivorService) Results(ctx context.Context, user string) ([]domain.Result, error) {
	user = strings.TrimSpace(user)
	snap, picks, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	return Judge(snap, picks), nil
}

func (s *SurvivorService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	results, err := s.Results(ctx, "")
	if err != nil {
		return nil, err
	}
	return Leaderboard(results), nil
}

func (s *SurvivorService) UserStats(ctx context.Context, user string) (domain.UserStats, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return domain.UserStats{}, domain.ErrInvalidUser
	}
	results, err := s.Results(ctx, user)
	if err != nil {
		return domain.UserStats{}, err
	}
	return Stats(user, results), nil
}

// load reads the schedule snapshot and picks concurrently. An empty user
// loads every pick.
func (s *SurvivorService) load(ctx context.Context, user string) (*domain.Schedule, []domain.Pick, error) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(dbCtx)
	var snap *domain.Schedule
	var picks []domain.Pick

	g.Go(func() error {
		var err error
		snap, err = s.schedule.Snapshot(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		if user == "" {
			picks, err = s.pickStore.ListPicks(gCtx)
		} else {
			picks, err = s.pickStore.ListPicksByUser(gCtx, user)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user", user).Msg("failed to load schedule and picks")
		return nil, nil, fmt.Errorf("failed to load schedule and picks: %w", err)
	}
	return snap, picks, nil
}

// Dashboard is everything a participant sees on one page: their standing,
// the active stage, their assignment or pick in it, and the leaderboard.
func (s *SurvivorService) Dashboard(ctx context.Context, user string) (*Dashboard, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, domain.ErrInvalidUser
	}

	snap, picks, err := s.load(ctx, "")
	if err != nil {
		return nil, err
	}
	results := Judge(snap, picks)

	d := &Dashboard{
		User:        user,
		Alive:       IsAlive(user, results),
		Leaderboard: Leaderboard(results),
		Timezone:    s.displayTZ.String(),
	}
	for _, r := range results {
		if r.User == user {
			d.Results = append(d.Results, r)
		}
	}

	stage, ok := ActiveStage(snap, s.clock.Now())
	if !ok {
		s.logger.Debug().Str("user", user).Msg("no active stage")
		return d, nil
	}
	d.ActiveStage = &stage

	for i := range picks {
		if picks[i].User == user && picks[i].StageID == stage.ID {
			d.Pick = &picks[i]
		}
	}

	if !d.Alive && !s.assignEliminated {
		d.AssignmentSkipped = true
		return d, nil
	}

	assigned, err := s.Assign(ctx, user, stage.ID)
	switch {
	case errors.Is(err, domain.ErrNoEligibleMatch):
		// the last eligible match started between the two reads
		return d, nil
	case err != nil:
		return nil, err
	}
	d.Assigned = assigned
	return d, nil
}
