package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/adapter/metrics"
	"github.com/pscheid92/bookvote/internal/adapter/redis"
	"github.com/pscheid92/bookvote/internal/app"
	"github.com/pscheid92/bookvote/internal/platform/config"
	apperrors "github.com/pscheid92/bookvote/internal/platform/errors"
	"github.com/pscheid92/bookvote/internal/platform/logging"
	"github.com/pscheid92/bookvote/internal/platform/retry"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config, storeMetrics *metrics.StoreMetrics) (*goredis.Client, error) {
	client, err := redis.NewClient(cfg.RedisURL,
		redis.NewMetricsHook(storeMetrics),
		redis.NewCircuitBreakerHook(storeMetrics),
	)
	if err != nil {
		return nil, err
	}

	policy := retry.Policy{
		MaxAttempts:    4,
		InitialBackoff: 250 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Redis not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	err = retry.DoVoid(ctx, policy, retry.StoreErrors, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		return redis.Ping(pingCtx, client)
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func setupService(cfg *config.Config, rdb *goredis.Client, m *metrics.Set) (*app.Service, error) {
	clock := clockwork.NewRealClock()

	votes, err := redis.NewVotePolicy(rdb, cfg.Policy())
	if err != nil {
		return nil, err
	}

	stores := app.Stores{
		Votes:    votes,
		Ranking:  redis.NewRanking(rdb),
		Limiter:  redis.NewRateLimiter(rdb, cfg.RateLimitMaxRequests, cfg.RateLimitWindow),
		Posts:    redis.NewPostStore(rdb, clock),
		Pages:    redis.NewPageStore(rdb),
		Activity: redis.NewActivityLog(rdb, clock, cfg.ActivityMaxLen),
		Wiper:    redis.NewWiper(rdb),
	}
	settings := app.Settings{
		RankingScope:  cfg.RankingScope,
		TopCount:      cfg.TopCount,
		HomePage:      cfg.HomePage,
		HomePageLimit: cfg.HomePageLimit,
		OpTimeout:     cfg.StoreTimeout,
	}

	return app.NewService(stores, settings, clock, m.Votes, m.RateLimits), nil
}

// serveMetrics exposes the registry while the command runs. The returned func stops the server.
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}
}

// report prints a failed command to stderr and maps it to an exit code.
func report(err error) int {
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	structured := apperrors.AsStructuredError(err)
	fmt.Fprintf(os.Stderr, "error: %s (%d)\n", structured.Message, structured.HTTPStatus())
	if structured.Indeterminate() {
		fmt.Fprintln(os.Stderr, "the operation may or may not have been applied")
	}
	slog.Debug("Command failed", "type", string(structured.Type), "error", err)
	return 1
}

func realMain() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "version":
		return exitCode(printVersion(os.Stdout))
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	}

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Debug("Starting command", "command", cmd, "env", cfg.AppEnv, "policy", cfg.VotePolicy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	rdb, err := setupRedis(ctx, cfg, m.Store)
	if err != nil {
		return report(err)
	}
	defer func() { _ = rdb.Close() }()

	svc, err := setupService(cfg, rdb, m)
	if err != nil {
		return report(err)
	}

	stopMetrics := serveMetrics(cfg.MetricsAddr, m.Registry)
	defer stopMetrics()

	if err := run(ctx, svc, cmd, args, os.Stdout); err != nil {
		return report(err)
	}
	return 0
}

func exitCode(err error) int {
	if err != nil {
		return report(err)
	}
	return 0
}

func main() {
	os.Exit(realMain())
}
