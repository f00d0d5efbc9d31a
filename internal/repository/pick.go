package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vct-survivor/internal/db"
	"vct-survivor/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type PickRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPickRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PickRepository {
	return &PickRepository{queries: queries, db: sqlDB, logger: logger}
}

func (r *PickRepository) GetPick(ctx context.Context, user string, stageID int) (*domain.Pick, error) {
	row, err := r.queries.GetPick(ctx, db.GetPickParams{User: user, StageID: int64(stageID)})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}

	p := toDomainPick(row)
	return &p, nil
}

// InsertPick appends a pick. The unique (user, stage_id) index turns a racing
// second insert into ErrDuplicatePick.
func (r *PickRepository) InsertPick(ctx context.Context, p domain.Pick) error {
	id := p.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	err := inTx(ctx, r.db, r.queries, func(q *db.Queries) error {
		return q.InsertPick(ctx, db.Pick{
			ID:          id,
			User:        p.User,
			StageID:     int64(p.StageID),
			MatchID:     p.MatchID,
			PickTeam:    p.Team,
			PickTimeIso: formatTime(p.PickedAt),
		})
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%d", domain.ErrDuplicatePick, p.User, p.StageID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert pick: %w", err)
	}
	return nil
}

func (r *PickRepository) ListPicks(ctx context.Context) ([]domain.Pick, error) {
	rows, err := r.queries.ListPicks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	return toDomainPicks(rows), nil
}

func (r *PickRepository) ListPicksByUser(ctx context.Context, user string) ([]domain.Pick, error) {
	rows, err := r.queries.ListPicksByUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks for %s: %w", user, err)
	}
	return toDomainPicks(rows), nil
}

func toDomainPicks(rows []db.Pick) []domain.Pick {
	result := make([]domain.Pick, len(rows))
	for i, row := range rows {
		result[i] = toDomainPick(row)
	}
	return result
}

func toDomainPick(row db.Pick) domain.Pick {
	pickedAt, _ := time.Parse(time.RFC3339Nano, row.PickTimeIso)
	return domain.Pick{
		ID:       row.ID,
		User:     row.User,
		StageID:  int(row.StageID),
		MatchID:  row.MatchID,
		Team:     row.PickTeam,
		PickedAt: pickedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
