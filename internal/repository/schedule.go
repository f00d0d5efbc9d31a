package repository

import (
	"context"
	"database/sql"
	"fmt"
	"vct-survivor/internal/constants"
	"vct-survivor/internal/db"
	"vct-survivor/internal/domain"

	"github.com/rs/zerolog"
)

type ScheduleRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewScheduleRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ScheduleRepository) LoadSchedule(ctx context.Context) ([]domain.Match, error) {
	rows, err := r.queries.ListSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}

	matches := make([]domain.Match, len(rows))
	for i, row := range rows {
		start, _ := domain.ParseMatchTime(row.MatchTimeIso)
		matches[i] = domain.Match{
			ID:           row.MatchID,
			StageID:      int(row.StageID),
			StageName:    row.StageName,
			TeamA:        row.TeamA,
			TeamB:        row.TeamB,
			StartTime:    start,
			StartTimeRaw: row.MatchTimeIso,
			Winner:       row.WinnerTeam,
		}
	}
	return matches, nil
}

// ReplaceSchedule swaps the whole table inside one transaction.
func (r *ScheduleRepository) ReplaceSchedule(ctx context.Context, matches []domain.Match) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.DeleteSchedule(ctx); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}

	for i := 0; i < len(matches); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(matches) {
			end = len(matches)
		}

		for j, m := range matches[i:end] {
			err := qtx.InsertScheduleRow(ctx, db.ScheduleRow{
				MatchID:      m.ID,
				StageID:      int64(m.StageID),
				StageName:    m.StageName,
				TeamA:        m.TeamA,
				TeamB:        m.TeamB,
				MatchTimeIso: m.StartTimeRaw,
				WinnerTeam:   m.Winner,
				Position:     int64(i + j),
			})
			if err != nil {
				return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}

	r.logger.Debug().Int("match_count", len(matches)).Msg("schedule table replaced")
	return nil
}

func (r *ScheduleRepository) SetWinner(ctx context.Context, matchID, winner string) error {
	var n int64
	err := inTx(ctx, r.db, r.queries, func(q *db.Queries) error {
		var err error
		n, err = q.UpdateWinner(ctx, db.UpdateWinnerParams{WinnerTeam: winner, MatchID: matchID})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update winner for %s: %w", matchID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMatch, matchID)
	}
	return nil
}
