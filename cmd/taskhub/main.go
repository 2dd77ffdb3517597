// Package main starts the TaskHub terminal application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskhub/internal/app"
	"taskhub/internal/engine"
	"taskhub/internal/events"
	"taskhub/internal/logging"
	"taskhub/internal/model"
	"taskhub/internal/remind"
	"taskhub/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("taskhub: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, shutdownLogs, err := logging.Setup(cfg.LogPath)
	if err != nil {
		return err
	}
	defer shutdownLogs()

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()
	s.SetLogger(logger)

	dispatcher := events.NewDispatcher()
	engine.New(s, logger).Register(dispatcher)
	s.SetDispatcher(dispatcher)

	ctx := context.Background()
	worker, err := resolveUser(ctx, s, cfg.User)
	if err != nil {
		return err
	}
	logger.Info("signed in", "username", worker.Username)

	var poller *remind.Poller
	if cfg.Reminders.Enabled {
		interval := time.Duration(cfg.Reminders.IntervalSec) * time.Second
		poller = remind.New(s, interval, cfg.Reminders.WindowDays, logger)
		poller.Start(ctx)
	}

	p := tea.NewProgram(app.New(s, worker, poller), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// resolveUser looks up the configured worker, falling back to the OS
// username. A missing worker is created on first run as a staff member
// so a fresh install is immediately usable.
func resolveUser(ctx context.Context, s store.Store, username string) (*model.Worker, error) {
	if username == "" {
		u, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("determining user: %w", err)
		}
		username = u.Username
	}

	worker, err := s.GetWorkerByUsername(ctx, username)
	if err == nil {
		return worker, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hostname, _ := os.Hostname()
	return s.CreateWorker(ctx, model.Worker{
		Username:  username,
		FirstName: username,
		Email:     fmt.Sprintf("%s@%s", username, hostname),
		IsStaff:   true,
	})
}
