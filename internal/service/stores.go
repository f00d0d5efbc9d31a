package service

import (
	"context"
	"fmt"
	"vct-survivor/internal/domain"
)

// ScheduleStore is written only through ScheduleService.
type ScheduleStore interface {
	LoadSchedule(ctx context.Context) ([]domain.Match, error)
	ReplaceSchedule(ctx context.Context, matches []domain.Match) error
	SetWinner(ctx context.Context, matchID, winner string) error
}

// AssignmentStore lookups return nil, nil when no record exists.
type AssignmentStore interface {
	GetAssignment(ctx context.Context, user string, stageID int) (*domain.Assignment, error)
	PutAssignment(ctx context.Context, a domain.Assignment) error
}

// PickStore is append-only. InsertPick fails with domain.ErrDuplicatePick
// when (user, stage) already has a pick.
type PickStore interface {
	GetPick(ctx context.Context, user string, stageID int) (*domain.Pick, error)
	InsertPick(ctx context.Context, p domain.Pick) error
	ListPicks(ctx context.Context) ([]domain.Pick, error)
	ListPicksByUser(ctx context.Context, user string) ([]domain.Pick, error)
}

// ledgerKey is the unit of write serialization for assignments and picks.
func ledgerKey(user string, stageID int) string {
	return fmt.Sprintf("%s\x00%d", user, stageID)
}
