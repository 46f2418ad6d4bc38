// Package cli provides the startup steps shared by cmd/donatrack and
// cmd/donatrack-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"donatrack/internal/config"
	"donatrack/internal/log"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger at the given level and makes
// it the slog default.
func SetupLogger(level string, out io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger, nil
}

// LoadConfig reads the configuration through l and validates it. The
// export worker passes exporter=true to require the Sheets settings.
func LoadConfig(ctx context.Context, l envconfig.Lookuper, exporter bool) (*config.Config, error) {
	cfg, err := config.LoadFrom(ctx, l)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exporter {
		if err := cfg.ValidateExporter(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Bootstrap runs the common startup sequence against the process
// environment: .env file, configuration, logger. Failures exit the process.
func Bootstrap(component string, exporter bool) (*config.Config, *log.Logger) {
	LoadEnvFile()

	cfg, err := LoadConfig(context.Background(), envconfig.OsLookuper(), exporter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", component, err)
		os.Exit(1)
	}

	logger, err := SetupLogger(cfg.LogLevel, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", component, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
