package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vct-survivor/internal/db"
	"vct-survivor/internal/domain"

	"github.com/rs/zerolog"
)

type AssignmentRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAssignmentRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AssignmentRepository {
	return &AssignmentRepository{queries: queries, db: sqlDB, logger: logger}
}

// GetAssignment returns nil without error when the user has no assignment
// for the stage.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, user string, stageID int) (*domain.Assignment, error) {
	row, err := r.queries.GetAssignment(ctx, db.GetAssignmentParams{User: user, StageID: int64(stageID)})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	a := toDomainAssignment(row)
	return &a, nil
}

func (r *AssignmentRepository) PutAssignment(ctx context.Context, a domain.Assignment) error {
	err := inTx(ctx, r.db, r.queries, func(q *db.Queries) error {
		return q.UpsertAssignment(ctx, db.Assignment{
			User:            a.User,
			StageID:         int64(a.StageID),
			MatchID:         a.MatchID,
			AssignedTimeIso: formatTime(a.AssignedAt),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upsert assignment for %s/%d: %w", a.User, a.StageID, err)
	}
	return nil
}

func toDomainAssignment(row db.Assignment) domain.Assignment {
	assignedAt, _ := time.Parse(time.RFC3339Nano, row.AssignedTimeIso)
	return domain.Assignment{
		User:       row.User,
		StageID:    int(row.StageID),
		MatchID:    row.MatchID,
		AssignedAt: assignedAt.UTC(),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
