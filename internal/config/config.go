package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress           string
	DatabaseURI          string
	OrderServiceAddress  string
	TokenRefreshLeeway   time.Duration
	CreateAttempts       int
	NumberingAttempts    int
	ReversalAttempts     int
	ReversalPollInterval time.Duration
	ReversalBatchSize    int
	WorkerPoolSize       int
	ShutdownTimeout      time.Duration
}

const (
	defaultRunAddress           = ":8080"
	defaultTokenRefreshLeeway   = 5 * time.Minute
	defaultCreateAttempts       = 5
	defaultNumberingAttempts    = 10
	defaultReversalAttempts     = 3
	defaultReversalPollInterval = 30 * time.Second
	defaultReversalBatchSize    = 16
	defaultWorkerPoolSize       = 2
	defaultShutdownTimeout      = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		OrderServiceAddress:  getString(lookup, "ORDER_SERVICE_ADDRESS", ""),
		TokenRefreshLeeway:   getDuration(lookup, "TOKEN_REFRESH_LEEWAY", defaultTokenRefreshLeeway),
		CreateAttempts:       getInt(lookup, "CREATE_ATTEMPTS", defaultCreateAttempts),
		NumberingAttempts:    getInt(lookup, "NUMBERING_ATTEMPTS", defaultNumberingAttempts),
		ReversalAttempts:     getInt(lookup, "REVERSAL_ATTEMPTS", defaultReversalAttempts),
		ReversalPollInterval: getDuration(lookup, "REVERSAL_POLL_INTERVAL", defaultReversalPollInterval),
		ReversalBatchSize:    getInt(lookup, "REVERSAL_BATCH_SIZE", defaultReversalBatchSize),
		WorkerPoolSize:       getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("procure", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		leewayStr          = cfg.TokenRefreshLeeway.String()
		pollIntervalStr    = cfg.ReversalPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.OrderServiceAddress, "r", cfg.OrderServiceAddress, "External order service base URL")
	fs.StringVar(&leewayStr, "token-leeway", leewayStr, "Refresh tokens expiring within this window")
	fs.IntVar(&cfg.CreateAttempts, "create-attempts", cfg.CreateAttempts, "HTTP retry cap per create call")
	fs.IntVar(&cfg.NumberingAttempts, "numbering-attempts", cfg.NumberingAttempts, "Manual numbering conflict loop cap")
	fs.IntVar(&cfg.ReversalAttempts, "reversal-attempts", cfg.ReversalAttempts, "Payable reversal retry cap")
	fs.StringVar(&pollIntervalStr, "reversal-poll", pollIntervalStr, "Interval between reversal queue polls")
	fs.IntVar(&cfg.ReversalBatchSize, "reversal-batch", cfg.ReversalBatchSize, "Maximum reversals per polling batch")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reversal workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenRefreshLeeway, err = time.ParseDuration(leewayStr); err != nil {
		return nil, fmt.Errorf("invalid token leeway: %w", err)
	}

	if cfg.ReversalPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reversal poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.TokenRefreshLeeway <= 0 {
		cfg.TokenRefreshLeeway = defaultTokenRefreshLeeway
	}

	if cfg.CreateAttempts <= 0 {
		cfg.CreateAttempts = defaultCreateAttempts
	}

	if cfg.NumberingAttempts <= 0 {
		cfg.NumberingAttempts = defaultNumberingAttempts
	}

	if cfg.ReversalAttempts <= 0 {
		cfg.ReversalAttempts = defaultReversalAttempts
	}

	if cfg.ReversalPollInterval <= 0 {
		cfg.ReversalPollInterval = defaultReversalPollInterval
	}

	if cfg.ReversalBatchSize <= 0 {
		cfg.ReversalBatchSize = defaultReversalBatchSize
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.OrderServiceAddress == "" {
		return nil, fmt.Errorf("order service address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
