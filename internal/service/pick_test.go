package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"vct-survivor/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assign returns alice's stage 1 match and its start.
func assign(t *testing.T, h *harness) domain.Match {
	t.Helper()
	a, err := h.assignments.GetOrCreate(context.Background(), "alice", 1)
	require.NoError(t, err)

	snap, err := h.schedule.Snapshot(context.Background())
	require.NoError(t, err)
	m, ok := snap.Match(a.MatchID)
	require.True(t, ok)
	return m
}

func TestRecordPick(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture())
	m := assign(t, h)

	p, err := h.picks.RecordPick(ctx, "alice", 1, m.ID, m.TeamB)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, m.TeamB, p.Team)
	assert.Equal(t, t0, p.PickedAt)

	stored, err := h.picks.GetPick(ctx, "alice", 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *p, *stored)

	_, err = h.picks.RecordPick(ctx, "alice", 1, m.ID, m.TeamA)
	require.ErrorIs(t, err, domain.ErrDuplicatePick)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Picks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Picks.WithLabelValues("duplicate")))
}

func TestRecordPick_Rejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture())
	m := assign(t, h)

	other := "M1"
	if m.ID == "M1" {
		other = "M3"
	}

	tests := []struct {
		name    string
		user    string
		stage   int
		matchID string
		team    string
		want    error
	}{
		{name: "unknown match", user: "alice", stage: 1, matchID: "M99", team: "Team X", want: domain.ErrUnknownMatch},
		{name: "match in another stage", user: "alice", stage: 1, matchID: "M4", team: "Team X", want: domain.ErrUnknownMatch},
		{name: "team not in match", user: "alice", stage: 1, matchID: m.ID, team: "Team Q", want: domain.ErrInvalidTeam},
		{name: "empty team", user: "alice", stage: 1, matchID: m.ID, team: "", want: domain.ErrInvalidTeam},
		{name: "started match", user: "alice", stage: 1, matchID: "M2", team: "Team Z", want: domain.ErrLocked},
		{name: "not the assigned match", user: "alice", stage: 1, matchID: other, team: fixtureTeam(other), want: domain.ErrNotAssigned},
		{name: "no assignment", user: "bob", stage: 1, matchID: m.ID, team: m.TeamA, want: domain.ErrNotAssigned},
		{name: "blank user", user: " ", stage: 1, matchID: m.ID, team: m.TeamA, want: domain.ErrInvalidUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.picks.RecordPick(ctx, tt.user, tt.stage, tt.matchID, tt.team)
			require.ErrorIs(t, err, tt.want)
		})
	}

	picks, err := h.store.ListPicks(ctx)
	require.NoError(t, err)
	assert.Empty(t, picks, "rejected picks leave the ledger untouched")
}

func fixtureTeam(matchID string) string {
	m, _ := domain.NewSchedule(fixture(), t0).Match(matchID)
	return m.TeamA
}

func TestRecordPick_LockWindow(t *testing.T) {
	tests := []struct {
		name   string
		before time.Duration
		want   error
	}{
		{name: "well before", before: time.Hour},
		{name: "just before deadline", before: 5*time.Minute + time.Nanosecond},
		{name: "at deadline", before: 5 * time.Minute, want: domain.ErrLocked},
		{name: "inside window", before: time.Minute, want: domain.ErrLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, fixture())
			m := assign(t, h)

			h.clock.Set(m.StartTime.Add(-tt.before))
			ok, err := h.picks.CanPick(ctx, m.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want == nil, ok)

			_, err = h.picks.RecordPick(ctx, "alice", 1, m.ID, m.TeamA)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCanPick(t *testing.T) {
	ctx := context.Background()
	matches := append(fixture(), domain.Match{ID: "M5", StageID: 1, TeamA: "A", TeamB: "B", StartTimeRaw: "later"})
	h := newHarness(t, matches)

	tests := map[string]bool{
		"M1":  true,
		"M2":  false,
		"M5":  false,
		"M99": false,
	}
	for id, want := range tests {
		got, err := h.picks.CanPick(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}
}

func TestRecordPick_ConcurrentAtMostOne(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture())
	m := assign(t, h)

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, dup int
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			team := m.TeamA
			if i%2 == 1 {
				team = m.TeamB
			}
			_, err := h.picks.RecordPick(ctx, "alice", 1, m.ID, team)

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
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	picks, err := h.store.ListPicksByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, picks, 1)
}

type racingPicks struct {
	PickStore
}

// GetPick never sees the concurrent writer, so only the store catches it.
func (racingPicks) GetPick(context.Context, string, int) (*domain.Pick, error) {
	return nil, nil
}

func TestRecordPick_StoreDuplicateSurfaces(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture())
	m := assign(t, h)

	_, err := h.picks.RecordPick(ctx, "alice", 1, m.ID, m.TeamA)
	require.NoError(t, err)

	svc := NewPickService(h.schedule, h.store, racingPicks{h.store}, h.picks.locks, h.clock, h.metrics, h.cfg, zerolog.Nop())
	_, err = svc.RecordPick(ctx, "alice", 1, m.ID, m.TeamB)
	require.ErrorIs(t, err, domain.ErrDuplicatePick)
}
