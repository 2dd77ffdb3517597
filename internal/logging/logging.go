// Package logging sets up structured logging through the OpenTelemetry
// slog bridge. Records go to a log file rather than stdout, which
// belongs to the terminal UI.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const instrumentationName = "taskhub"

// Setup opens (or creates) the log file at path and returns a logger
// writing to it, plus a shutdown function that flushes and closes.
func Setup(path string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	exporter, err := stdoutlog.New(stdoutlog.WithWriter(file))
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("creating log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)

	logger := otelslog.NewLogger(instrumentationName,
		otelslog.WithLoggerProvider(provider))
	slog.SetDefault(logger)

	shutdown := func() error {
		if err := provider.Shutdown(context.Background()); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
	return logger, shutdown, nil
}
