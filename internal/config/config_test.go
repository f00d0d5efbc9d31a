package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "vct_survivor.db", cfg.DBPath)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.LockWindow)
	assert.Equal(t, time.Minute, cfg.ResultsSyncInterval)
	assert.True(t, cfg.AssignEliminated)
	assert.Equal(t, "Asia/Kolkata", cfg.DisplayTZ.String())
	assert.Empty(t, cfg.AdminKey)
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOCK_WINDOW", "10m")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ASSIGN_ELIMINATED", "false")
	t.Setenv("DISPLAY_TZ", "UTC")
	t.Setenv("ADMIN_KEY", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.LockWindow)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.False(t, cfg.AssignEliminated)
	assert.Equal(t, time.UTC, cfg.DisplayTZ)
	assert.Equal(t, "s3cret", cfg.AdminKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad lock window", key: "LOCK_WINDOW", value: "five minutes"},
		{name: "negative lock window", key: "LOCK_WINDOW", value: "-1m"},
		{name: "bad bool", key: "ASSIGN_ELIMINATED", value: "maybe"},
		{name: "bad tz", key: "DISPLAY_TZ", value: "Mars/Olympus"},
		{name: "bad backend", key: "STORE_BACKEND", value: "postgres"},
		{name: "zero sync interval", key: "RESULTS_SYNC_INTERVAL", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}
