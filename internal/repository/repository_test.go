package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"vct-survivor/internal/config"
	"vct-survivor/internal/database"
	"vct-survivor/internal/db"
	"vct-survivor/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	schedule interface {
		LoadSchedule(context.Context) ([]domain.Match, error)
		ReplaceSchedule(context.Context, []domain.Match) error
		SetWinner(context.Context, string, string) error
	}
	assignments interface {
		GetAssignment(context.Context, string, int) (*domain.Assignment, error)
		PutAssignment(context.Context, domain.Assignment) error
	}
	picks interface {
		GetPick(context.Context, string, int) (*domain.Pick, error)
		InsertPick(context.Context, domain.Pick) error
		ListPicks(context.Context) ([]domain.Pick, error)
		ListPicksByUser(context.Context, string) ([]domain.Pick, error)
	}
}

func newSQLiteStores(t *testing.T) stores {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "survivor.db")}
	logger := zerolog.Nop()

	sqlDB, err := database.New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	queries := db.New(sqlDB)
	return stores{
		schedule:    NewScheduleRepository(sqlDB, queries, logger),
		assignments: NewAssignmentRepository(sqlDB, queries, logger),
		picks:       NewPickRepository(sqlDB, queries, logger),
	}
}

func newMemoryStores(t *testing.T) stores {
	m := NewMemoryStore()
	return stores{schedule: m, assignments: m, picks: m}
}

var backends = []struct {
	name string
	new  func(t *testing.T) stores
}{
	{name: "sqlite", new: newSQLiteStores},
	{name: "memory", new: newMemoryStores},
}

func sampleMatches() []domain.Match {
	start, _ := domain.ParseMatchTime("2025-08-01T15:00:00Z")
	return []domain.Match{
		{ID: "M1", StageID: 1, StageName: "Groups", TeamA: "Team X", TeamB: "Team Y", StartTime: start, StartTimeRaw: "2025-08-01T15:00:00Z"},
		{ID: "M2", StageID: 1, StageName: "Groups", TeamA: "Team Z", TeamB: "Team W", StartTimeRaw: "not a time"},
		{ID: "M3", StageID: 2, StageName: "Playoffs", TeamA: "Team X", TeamB: "Team Z", StartTimeRaw: "2025-08-03T15:00:00Z", Winner: "Team Z"},
	}
}

func TestSchedule_ReplaceAndLoad(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.new(t)

			require.NoError(t, s.schedule.ReplaceSchedule(ctx, sampleMatches()))
			got, err := s.schedule.LoadSchedule(ctx)
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, "M1", got[0].ID)
			assert.True(t, got[0].HasStartTime())
			assert.False(t, got[1].HasStartTime())
			assert.Equal(t, "not a time", got[1].StartTimeRaw)
			assert.Equal(t, "Team Z", got[2].Winner)

			require.NoError(t, s.schedule.ReplaceSchedule(ctx, sampleMatches()[:1]))
			got, err = s.schedule.LoadSchedule(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestSchedule_SetWinner(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.new(t)
			require.NoError(t, s.schedule.ReplaceSchedule(ctx, sampleMatches()))

			require.NoError(t, s.schedule.SetWinner(ctx, "M1", "Team Y"))
			got, err := s.schedule.LoadSchedule(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Team Y", got[0].Winner)

			err = s.schedule.SetWinner(ctx, "M404", "Team Y")
			assert.True(t, errors.Is(err, domain.ErrUnknownMatch))
		})
	}
}

func TestAssignments_Upsert(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.new(t)

			a, err := s.assignments.GetAssignment(ctx, "alice", 1)
			require.NoError(t, err)
			assert.Nil(t, a)

			first := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
			require.NoError(t, s.assignments.PutAssignment(ctx, domain.Assignment{User: "alice", StageID: 1, MatchID: "M1", AssignedAt: first}))
			require.NoError(t, s.assignments.PutAssignment(ctx, domain.Assignment{User: "alice", StageID: 1, MatchID: "M2", AssignedAt: first.Add(time.Hour)}))
			require.NoError(t, s.assignments.PutAssignment(ctx, domain.Assignment{User: "bob", StageID: 1, MatchID: "M1", AssignedAt: first}))

			a, err = s.assignments.GetAssignment(ctx, "alice", 1)
			require.NoError(t, err)
			require.NotNil(t, a)
			assert.Equal(t, "M2", a.MatchID)
			assert.True(t, first.Add(time.Hour).Equal(a.AssignedAt))

			b, err := s.assignments.GetAssignment(ctx, "bob", 1)
			require.NoError(t, err)
			require.NotNil(t, b)
			assert.Equal(t, "M1", b.MatchID)
		})
	}
}

func TestPicks_InsertOnce(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.new(t)
			now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

			require.NoError(t, s.picks.InsertPick(ctx, domain.Pick{User: "alice", StageID: 1, MatchID: "M1", Team: "Team X", PickedAt: now}))
			err := s.picks.InsertPick(ctx, domain.Pick{User: "alice", StageID: 1, MatchID: "M1", Team: "Team Y", PickedAt: now})
			assert.True(t, errors.Is(err, domain.ErrDuplicatePick))

			require.NoError(t, s.picks.InsertPick(ctx, domain.Pick{User: "alice", StageID: 2, MatchID: "M3", Team: "Team X", PickedAt: now}))
			require.NoError(t, s.picks.InsertPick(ctx, domain.Pick{User: "bob", StageID: 1, MatchID: "M1", Team: "Team Y", PickedAt: now}))

			p, err := s.picks.GetPick(ctx, "alice", 1)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, "Team X", p.Team)
			assert.NotEmpty(t, p.ID)
			assert.True(t, now.Equal(p.PickedAt))

			mine, err := s.picks.ListPicksByUser(ctx, "alice")
			require.NoError(t, err)
			assert.Len(t, mine, 2)

			all, err := s.picks.ListPicks(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestPicks_ConcurrentInsertKeepsOne(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.new(t)

			var wg sync.WaitGroup
			var mu sync.Mutex
			var ok, dup int
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.picks.InsertPick(ctx, domain.Pick{User: "carol", StageID: 1, MatchID: "M1", Team: "Team X", PickedAt: time.Now()})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						ok++
					case errors.Is(err, domain.ErrDuplicatePick):
						dup++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, ok)
			assert.Equal(t, 15, dup)
		})
	}
}
