// query-history-logger captures lakehouse query statistics into a JSONL log.
//
// It snapshots the most expensive recent queries from the SQL endpoint's
// plan cache on a fixed interval and appends one JSON line per query to
// the log file. Run it as a sidecar when the main server's in-process
// capture loop is not wanted.
//
// Usage: go run ./scripts/query-history-logger [-config config.yaml] [-once]
//
// Flags:
//
//	-config  Path to the YAML config file (default: config.yaml)
//	-once    Capture a single snapshot and exit instead of looping
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/config"
	"github.com/melisaluis/fabric-mcp/pkg/history"
	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"github.com/melisaluis/fabric-mcp/pkg/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	once := flag.Bool("once", false, "Capture a single snapshot and exit")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath, "dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := lakehouse.Connect(ctx, &lakehouse.Config{
		Server:            cfg.Lakehouse.Server,
		Port:              cfg.Lakehouse.Port,
		Database:          cfg.Lakehouse.Database,
		AuthMethod:        cfg.Lakehouse.AuthMethod,
		Username:          cfg.Lakehouse.Username,
		Password:          cfg.Lakehouse.Password,
		TenantID:          cfg.Lakehouse.TenantID,
		ClientID:          cfg.Lakehouse.ClientID,
		ClientSecret:      cfg.Lakehouse.ClientSecret,
		Encrypt:           true,
		ConnectionTimeout: cfg.Lakehouse.ConnectionTimeoutSeconds,
		QueryTimeout:      cfg.Lakehouse.QueryTimeoutSeconds,
	})
	if err != nil {
		logger.Fatal("failed to connect to lakehouse", zap.String("error", logging.SanitizeError(err)))
	}
	defer conn.Close()

	capture := history.NewCapture(
		history.NewPlanCacheSource(conn),
		cfg.History.LogPath,
		time.Duration(cfg.History.IntervalSeconds)*time.Second,
		cfg.History.TopQueries,
		logger,
	)

	if *once {
		count, err := capture.RunOnce(ctx)
		if err != nil {
			logger.Fatal("capture failed", zap.String("error", logging.SanitizeError(err)))
		}
		logger.Info("snapshot written",
			zap.Int("records", count),
			zap.String("log_path", cfg.History.LogPath))
		return
	}

	logger.Info("starting query history logger",
		zap.String("log_path", cfg.History.LogPath),
		zap.Int("interval_seconds", cfg.History.IntervalSeconds),
		zap.Int("top_queries", cfg.History.TopQueries))
	capture.Run(ctx)
	logger.Info("query history logger stopped")
}
