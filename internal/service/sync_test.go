package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"vct-survivor/internal/api"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	mu      sync.Mutex
	results []api.MatchResult
	err     error
	calls   int
}

func (f *stubFeed) FetchResults(context.Context) ([]api.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results, f.err
}

func (f *stubFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResultSyncer_SyncOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, fixture())
	feed := &stubFeed{results: []api.MatchResult{
		{MatchID: "M1", Winner: "Team Y"},
		{MatchID: "M2", Winner: ""},
		{MatchID: "M3", Winner: "Team Q"},
		{MatchID: "M99", Winner: "Team X"},
	}}
	syncer := NewResultSyncer(feed, h.schedule, h.metrics, h.cfg, zerolog.Nop())

	applied, err := syncer.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	snap, err := h.schedule.Snapshot(ctx)
	require.NoError(t, err)
	m1, _ := snap.Match("M1")
	assert.Equal(t, "Team Y", m1.Winner)
	m3, _ := snap.Match("M3")
	assert.Empty(t, m3.Winner)

	applied, err = syncer.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "unchanged winners are not rewritten")
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.ResultSyncs.WithLabelValues("ok")))
}

func TestResultSyncer_FeedError(t *testing.T) {
	h := newHarness(t, fixture())
	syncer := NewResultSyncer(&stubFeed{err: errors.New("feed down")}, h.schedule, h.metrics, h.cfg, zerolog.Nop())

	_, err := syncer.SyncOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ResultSyncs.WithLabelValues("failed")))
}

func TestResultSyncer_Run(t *testing.T) {
	h := newHarness(t, fixture())
	h.cfg.ResultsSyncInterval = 10 * time.Millisecond
	feed := &stubFeed{}
	syncer := NewResultSyncer(feed, h.schedule, h.metrics, h.cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		syncer.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return feed.Calls() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("syncer did not stop")
	}
}

type limitedFeed struct{ stubFeed }

func (*limitedFeed) GetRateLimitInfo() api.RateLimitInfo {
	return api.RateLimitInfo{Limit: 60, Remaining: 7, Reset: 30}
}

func TestResultSyncer_LogsRateLimit(t *testing.T) {
	h := newHarness(t, fixture())
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	syncer := NewResultSyncer(&limitedFeed{}, h.schedule, h.metrics, h.cfg, logger)

	_, err := syncer.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"rate_limit_remaining":7`)
	assert.Contains(t, buf.String(), `"rate_limit_reset":30`)
}
