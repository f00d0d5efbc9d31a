package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
	"vct-survivor/internal/clock"
	"vct-survivor/internal/config"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/domain"
	"vct-survivor/internal/metrics"
	"vct-survivor/internal/parser"

	"github.com/rs/zerolog"
)

type ImportSummary struct {
	Stages     int
	Matches    int
	Unparsable []string
}

// ScheduleService owns the schedule snapshot. Readers share an immutable
// *domain.Schedule; replacement and winner updates hold the write lock for the
// store write and the snapshot swap.
type ScheduleService struct {
	store   ScheduleStore
	parsers parser.ParserFactory
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  zerolog.Logger
	ttl     time.Duration

	mu       sync.RWMutex
	snapshot *domain.Schedule
}

func NewScheduleService(store ScheduleStore, parsers parser.ParserFactory, clk clock.Clock, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		store:   store,
		parsers: parsers,
		clock:   clk,
		metrics: m,
		logger:  logger,
		ttl:     cfg.ScheduleCacheTTL,
	}
}

func (s *ScheduleService) Snapshot(ctx context.Context) (*domain.Schedule, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if s.fresh(snap) {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(ctx)
}

func (s *ScheduleService) fresh(snap *domain.Schedule) bool {
	if snap == nil || s.ttl <= 0 {
		return false
	}
	return s.clock.Now().Sub(snap.LoadedAt()) < s.ttl
}

func (s *ScheduleService) currentLocked(ctx context.Context) (*domain.Schedule, error) {
	if s.fresh(s.snapshot) {
		return s.snapshot, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	matches, err := s.store.LoadSchedule(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load schedule")
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	s.install(domain.NewSchedule(matches, s.clock.Now()))
	s.logger.Debug().Int("match_count", len(matches)).Msg("schedule snapshot loaded")
	return s.snapshot, nil
}

func (s *ScheduleService) install(snap *domain.Schedule) {
	s.snapshot = snap

	unparsable := unparsableMatches(snap.Matches())
	s.metrics.ScheduleMatches.Set(float64(snap.Len()))
	s.metrics.UnparsableMatchTimes.Set(float64(len(unparsable)))
	if len(unparsable) > 0 {
		s.logger.Warn().
			Strs("match_ids", unparsable).
			Msg("matches with unparsable match_time_iso are never eligible or pickable")
	}
}

func (s *ScheduleService) EligibleMatches(ctx context.Context, stageID int) ([]domain.Match, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return EligibleMatches(snap, stageID, s.clock.Now()), nil
}

// ActiveStage returns nil when no stage has an eligible match.
func (s *ScheduleService) ActiveStage(ctx context.Context) (*domain.Stage, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stage, ok := ActiveStage(snap, s.clock.Now())
	if !ok {
		return nil, nil
	}
	return &stage, nil
}

// ImportFile parses an uploaded schedule (CSV or XLSX by extension) and
// replaces the stored schedule with it.
func (s *ScheduleService) ImportFile(ctx context.Context, filename string, data []byte) (*ImportSummary, error) {
	if len(data) > constants.MaxScheduleUpload {
		return nil, s.reject(&domain.ScheduleError{Reason: fmt.Sprintf("upload of %d bytes exceeds %d", len(data), constants.MaxScheduleUpload)})
	}

	p, err := s.parsers.GetParser(filename)
	if err != nil {
		return nil, s.reject(&domain.ScheduleError{Reason: err.Error()})
	}
	table, err := p.Parse(data)
	if err != nil {
		return nil, s.reject(&domain.ScheduleError{Reason: err.Error()})
	}
	return s.ImportTable(ctx, table)
}

func (s *ScheduleService) ImportTable(ctx context.Context, table *parser.Table) (*ImportSummary, error) {
	matches, err := DecodeSchedule(table)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.Replace(ctx, matches); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &ImportSummary{
		Stages:     len(snap.Stages()),
		Matches:    snap.Len(),
		Unparsable: unparsableMatches(snap.Matches()),
	}, nil
}

func (s *ScheduleService) reject(err error) error {
	s.metrics.ScheduleReplacements.WithLabelValues("rejected").Inc()
	s.logger.Warn().Err(err).Msg("schedule replacement rejected")
	return err
}

// Replace swaps the whole schedule. Callers pass already validated matches.
func (s *ScheduleService) Replace(ctx context.Context, matches []domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.store.ReplaceSchedule(ctx, matches); err != nil {
		s.metrics.ScheduleReplacements.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Msg("failed to replace schedule")
		return fmt.Errorf("failed to replace schedule: %w", err)
	}

	s.install(domain.NewSchedule(matches, s.clock.Now()))
	s.metrics.ScheduleReplacements.WithLabelValues("ok").Inc()
	s.logger.Info().
		Int("match_count", len(matches)).
		Int("stage_count", len(s.snapshot.Stages())).
		Msg("schedule replaced")
	return nil
}

// SetWinner records (or clears, with "") the winner of one match.
func (s *ScheduleService) SetWinner(ctx context.Context, matchID, winner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.currentLocked(ctx)
	if err != nil {
		return err
	}
	m, ok := snap.Match(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMatch, matchID)
	}
	if winner != "" && !m.HasTeam(winner) {
		return fmt.Errorf("%w: %q is not %q or %q", domain.ErrInvalidTeam, winner, m.TeamA, m.TeamB)
	}
	if m.Winner == winner {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.store.SetWinner(ctx, matchID, winner); err != nil {
		s.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to set winner")
		return err
	}

	matches := snap.Matches()
	for i := range matches {
		if matches[i].ID == matchID {
			matches[i].Winner = winner
		}
	}
	s.install(domain.NewSchedule(matches, s.clock.Now()))

	s.logger.Info().Str("match_id", matchID).Str("winner", winner).Msg("match winner recorded")
	return nil
}

func (s *ScheduleService) ExportCSV(ctx context.Context) ([]byte, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, snap.Len())
	for _, m := range snap.Matches() {
		rows = append(rows, []string{
			strconv.Itoa(m.StageID),
			m.StageName,
			m.ID,
			m.TeamA,
			m.TeamB,
			m.StartTimeRaw,
			m.Winner,
		})
	}
	return parser.WriteCSV(parser.ScheduleColumns, rows)
}

// DecodeSchedule validates a schedule table and converts it to matches. An
// unparsable match_time_iso is accepted; such a match is never eligible.
func DecodeSchedule(table *parser.Table) ([]domain.Match, error) {
	if missing := table.Missing(parser.ScheduleColumns); len(missing) > 0 {
		return nil, &domain.ScheduleError{Missing: missing}
	}

	seen := make(map[string]int, len(table.Rows))
	matches := make([]domain.Match, 0, len(table.Rows))
	for _, row := range table.Rows {
		rawStage := table.Get(row, "stage_id")
		stageID, err := strconv.Atoi(rawStage)
		if err != nil {
			return nil, &domain.ScheduleError{Line: row.Line, Reason: fmt.Sprintf("stage_id %q is not an integer", rawStage)}
		}

		m := domain.Match{
			ID:           table.Get(row, "match_id"),
			StageID:      stageID,
			StageName:    table.Get(row, "stage_name"),
			TeamA:        table.Get(row, "team_a"),
			TeamB:        table.Get(row, "team_b"),
			StartTimeRaw: table.Get(row, "match_time_iso"),
			Winner:       table.Get(row, "winner_team"),
		}
		m.StartTime, _ = domain.ParseMatchTime(m.StartTimeRaw)

		switch {
		case m.ID == "":
			return nil, &domain.ScheduleError{Line: row.Line, Reason: "match_id is empty"}
		case m.TeamA == "" || m.TeamB == "":
			return nil, &domain.ScheduleError{Line: row.Line, Reason: fmt.Sprintf("match %s needs both teams", m.ID)}
		case m.Winner != "" && !m.HasTeam(m.Winner):
			return nil, &domain.ScheduleError{Line: row.Line, Reason: fmt.Sprintf("winner_team %q is neither %q nor %q", m.Winner, m.TeamA, m.TeamB)}
		}
		if prev, dup := seen[m.ID]; dup {
			return nil, &domain.ScheduleError{Line: row.Line, Reason: fmt.Sprintf("match_id %q already used on line %d", m.ID, prev)}
		}
		seen[m.ID] = row.Line

		matches = append(matches, m)
	}
	return matches, nil
}

func unparsableMatches(matches []domain.Match) []string {
	var ids []string
	for _, m := range matches {
		if !m.HasStartTime() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
