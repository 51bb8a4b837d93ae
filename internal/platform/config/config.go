package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/pscheid92/bookvote/internal/domain"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" default:"development"`
	RedisURL   string `env:"REDIS_URL"`
	VotePolicy string `env:"VOTE_POLICY" default:"multiple"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`
	LogFormat  string `env:"LOG_FORMAT" default:"text"`

	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" default:"15"`
	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW" default:"5s"`
	StoreTimeout         time.Duration `env:"STORE_TIMEOUT" default:"2s"`

	RankingScope   string `env:"RANKING_SCOPE" default:"books:top"`
	TopCount       int    `env:"TOP_COUNT" default:"3"`
	HomePage       string `env:"HOME_PAGE" default:"home"`
	HomePageLimit  int    `env:"HOME_PAGE_LIMIT" default:"6"`
	ActivityMaxLen int64  `env:"ACTIVITY_MAX_LEN" default:"1000"`

	MetricsAddr string `env:"METRICS_ADDR"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Policy returns the validated vote policy selector.
func (c *Config) Policy() domain.VotePolicyName {
	return domain.VotePolicyName(c.VotePolicy)
}

func validate(cfg *Config) error {
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}

	if _, err := domain.ParseVotePolicy(cfg.VotePolicy); err != nil {
		return fmt.Errorf("VOTE_POLICY must be one of multiple, single, changeable: %w", err)
	}

	if cfg.RateLimitMaxRequests < 1 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS must be at least 1")
	}
	if cfg.RateLimitWindow < time.Second {
		return errors.New("RATE_LIMIT_WINDOW must be at least 1s")
	}
	if cfg.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if cfg.RankingScope == "" {
		return errors.New("RANKING_SCOPE must not be empty")
	}
	if cfg.HomePage == "" {
		return errors.New("HOME_PAGE must not be empty")
	}
	if cfg.TopCount < 1 || cfg.HomePageLimit < 1 {
		return errors.New("TOP_COUNT and HOME_PAGE_LIMIT must be at least 1")
	}
	if cfg.ActivityMaxLen < 1 {
		return errors.New("ACTIVITY_MAX_LEN must be at least 1")
	}

	return nil
}
