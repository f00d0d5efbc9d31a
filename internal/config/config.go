package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	DBPath           string
	StoreBackend     string
	ServerPort       string
	LogLevel         string
	AdminKey         string
	LockWindow       time.Duration
	DisplayTZ        *time.Location
	AssignEliminated bool
	ScheduleCacheTTL time.Duration

	ResultsFeedURL      string
	ResultsFeedKey      string
	ResultsSyncInterval time.Duration

	// set when a .env file was read
	DotEnvLoaded bool
}

func Load() (*Config, error) {
	dotEnv := godotenv.Load() == nil

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "vct_survivor.db"),
		StoreBackend:   getEnv("STORE_BACKEND", BackendSQLite),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AdminKey:       getEnv("ADMIN_KEY", ""),
		ResultsFeedURL: getEnv("RESULTS_FEED_URL", ""),
		ResultsFeedKey: getEnv("RESULTS_FEED_KEY", ""),
		DotEnvLoaded:   dotEnv,
	}

	var err error
	if cfg.LockWindow, err = getDuration("LOCK_WINDOW", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LockWindow < 0 {
		return nil, fmt.Errorf("LOCK_WINDOW must not be negative, got %s", cfg.LockWindow)
	}
	if cfg.ScheduleCacheTTL, err = getDuration("SCHEDULE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ResultsSyncInterval, err = getDuration("RESULTS_SYNC_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ResultsSyncInterval <= 0 {
		return nil, fmt.Errorf("RESULTS_SYNC_INTERVAL must be positive, got %s", cfg.ResultsSyncInterval)
	}
	if cfg.AssignEliminated, err = getBool("ASSIGN_ELIMINATED", true); err != nil {
		return nil, err
	}

	tz := getEnv("DISPLAY_TZ", "Asia/Kolkata")
	if cfg.DisplayTZ, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TZ %q: %w", tz, err)
	}

	switch cfg.StoreBackend {
	case BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

var Module = fx.Provide(Load)
