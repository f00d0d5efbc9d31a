package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"vct-survivor/internal/config"
	"vct-survivor/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*FeedClient, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := metrics.NewNop()
	return NewFeedClient(&config.Config{ResultsFeedURL: srv.URL + "/results", ResultsFeedKey: "secret"}, m), m
}

func TestFetchResults(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		w.Header().Set("X-Ratelimit-Limit", "30")
		w.Header().Set("X-Ratelimit-Remaining", "12")
		w.Header().Set("X-Ratelimit-Reset", "45")
		_, _ = w.Write([]byte(`{"status":200,"data":[{"match_id":"M1","winner":"Team Y"},{"match_id":"M2","winner":""}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := client.FetchResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, []MatchResult{{MatchID: "M1", Winner: "Team Y"}, {MatchID: "M2"}}, results)

	info := client.GetRateLimitInfo()
	assert.Equal(t, 30, info.Limit)
	assert.Equal(t, 12, info.Remaining)
	assert.Equal(t, 45, info.Reset)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.FeedRateRemaining))
}

func TestFetchResults_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := client.FetchResults(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("body", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		_, err := client.FetchResults(context.Background())
		require.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		client := NewFeedClient(&config.Config{}, metrics.NewNop())
		assert.False(t, client.Enabled())
		_, err := client.FetchResults(context.Background())
		require.Error(t, err)
	})
}
