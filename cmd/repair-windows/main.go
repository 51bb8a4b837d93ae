package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pscheid92/bookvote/internal/adapter/redis"
	"github.com/pscheid92/bookvote/internal/platform/logging"
)

type options struct {
	redisURL string
	window   time.Duration
	dryRun   bool
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("repair-windows", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
	fs.DurationVar(&opts.window, "window", 5*time.Second, "expiry attached to counters without one")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Dry run mode (don't write to Redis)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.redisURL == "" {
		return opts, errors.New("redis URL required (--redis or REDIS_URL env)")
	}
	if opts.window < time.Second {
		return opts, errors.New("--window must be at least 1s")
	}
	return opts, nil
}

func realMain(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	level := "info"
	if opts.verbose {
		level = "debug"
	}
	logging.InitLogger(level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.NewClient(opts.redisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		return 1
	}
	defer func() { _ = rdb.Close() }()

	if err := redis.Ping(ctx, rdb); err != nil {
		slog.Error("Failed to connect to Redis", "url", sanitizeURL(opts.redisURL), "error", err)
		return 1
	}
	slog.Info("Connected to Redis", "url", sanitizeURL(opts.redisURL))

	start := time.Now()
	// the quota itself plays no part in a repair
	limiter := redis.NewRateLimiter(rdb, 0, opts.window)
	result, err := limiter.RepairWindows(ctx, opts.dryRun)
	if err != nil {
		slog.Error("Repair failed", "scanned", result.Scanned, "repaired", result.Repaired, "error", err)
		return 1
	}

	slog.Info("Repair summary",
		"scanned", result.Scanned,
		"repaired", result.Repaired,
		"dry_run", opts.dryRun,
		"duration_ms", time.Since(start).Milliseconds())
	return 0
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stderr))
}

// sanitizeURL hides the password for logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
