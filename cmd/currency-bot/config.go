package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"currency-bot/internal"
	"currency-bot/internal/bot"
	"currency-bot/internal/cbr"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Token string

	RedisURL string
	CacheTTL time.Duration

	CBRURL       string
	FetchTimeout time.Duration

	// WarmupCron is empty when scheduled warm-up is disabled.
	WarmupCron string
	Location   *time.Location

	// DatabaseURL is optional; without it commands are not audited.
	DatabaseURL string

	// HTTPPort is empty when the JSON API is disabled.
	HTTPPort string

	LogLevel zapcore.Level
	Workers  int

	// envFileErr is kept so main can log it once the logger exists.
	envFileErr error
}

func LoadConfig() (Config, error) {
	cfg := Config{
		RedisURL:     "redis://redis:6379",
		CacheTTL:     internal.DefaultSnapshotTTL,
		CBRURL:       cbr.DefaultURL,
		FetchTimeout: cbr.DefaultTimeout,
		WarmupCron:   "*/30 * * * *",
		LogLevel:     zapcore.InfoLevel,
		Workers:      bot.DefaultWorkers,
	}
	cfg.envFileErr = godotenv.Overload()

	cfg.Token = env("TOKEN_BOT")
	if cfg.Token == "" {
		return Config{}, fmt.Errorf("TOKEN_BOT is empty")
	}

	if v := env("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := env("CBR_URL"); v != "" {
		cfg.CBRURL = v
	}
	cfg.DatabaseURL = env("DATABASE_URL")

	if p := env("HTTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err != nil || n <= 0 || n > 65535 {
			return Config{}, fmt.Errorf("HTTP_PORT must be a port number, got %q", p)
		}
		cfg.HTTPPort = p
	}

	var err error
	if cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", cfg.CacheTTL); err != nil {
		return Config{}, err
	}

	if v, ok := os.LookupEnv("WARMUP_CRON"); ok {
		cfg.WarmupCron = strings.TrimSpace(v)
	}
	if cfg.WarmupCron != "" {
		if _, err := cron.ParseStandard(cfg.WarmupCron); err != nil {
			return Config{}, fmt.Errorf("WARMUP_CRON %q: %w", cfg.WarmupCron, err)
		}
	}

	location := "Europe/Moscow"
	if v := env("LOCATION"); v != "" {
		location = v
	}
	if cfg.Location, err = time.LoadLocation(location); err != nil {
		return Config{}, fmt.Errorf("load location %s: %w", location, err)
	}

	if v := env("LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = zapcore.ParseLevel(v); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if v := env("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("WORKERS must be a positive integer, got %q", v)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
