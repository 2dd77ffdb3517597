// Package remind runs the deadline reminder poller: a background loop
// that scans for open tasks approaching their deadline and files one
// deadline_approaching notification per task and assignee.
package remind

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskhub/internal/model"
)

// Store is the slice of the persistence layer the poller needs.
type Store interface {
	GetTasksDueWithin(ctx context.Context, from time.Time, days int) ([]model.Task, error)
	NotificationExists(ctx context.Context, recipientID, taskID, notificationType string) (bool, error)
	CreateNotification(ctx context.Context, n model.Notification) error
}

// Poller periodically scans for approaching deadlines. Reminder writes
// are plain derived-record inserts and never re-enter the event
// dispatcher.
type Poller struct {
	store    Store
	interval time.Duration
	window   int
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// New creates a Poller scanning every interval for tasks due within
// windowDays.
func New(s Store, interval time.Duration, windowDays int, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		store:    s,
		interval: interval,
		window:   windowDays,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine. One scan runs immediately;
// subsequent scans run on the ticker until Stop is called or ctx is
// cancelled. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go func() {
		if err := p.RunOnce(ctx); err != nil {
			p.logger.Warn("deadline scan failed", "error", err)
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				if err := p.RunOnce(ctx); err != nil {
					p.logger.Warn("deadline scan failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
}

// RunOnce performs a single reminder scan. Each (task, assignee) pair
// gets at most one deadline_approaching notification, ever: existing
// rows of that type suppress re-sending regardless of read state.
func (p *Poller) RunOnce(ctx context.Context) error {
	now := p.now()
	tasks, err := p.store.GetTasksDueWithin(ctx, now, p.window)
	if err != nil {
		return fmt.Errorf("scanning upcoming deadlines: %w", err)
	}

	created := 0
	for _, task := range tasks {
		for _, assignee := range task.Assignees {
			exists, err := p.store.NotificationExists(
				ctx, assignee.ID, task.ID, model.NotificationDeadlineApproaching)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			if err := p.store.CreateNotification(ctx, model.Notification{
				Recipient: assignee.ID,
				Type:      model.NotificationDeadlineApproaching,
				Title:     "Deadline Approaching",
				Message: fmt.Sprintf("Task %q is due on %s",
					task.Name, task.Deadline.Format("2006-01-02")),
				TaskID: &task.ID,
			}); err != nil {
				return fmt.Errorf("creating reminder for task %s: %w", task.ID, err)
			}
			created++
		}
	}

	if created > 0 {
		p.logger.Info("deadline reminders created", "count", created)
	}
	return nil
}
