// Package engine holds the derivation rules that turn entity lifecycle
// events into activity log entries and notifications. Rules are
// registered against an events.Dispatcher at startup and run
// synchronously inside the triggering mutation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskhub/internal/events"
	"taskhub/internal/model"
)

// Recorder is the slice of the store the rules need: derived-record
// writes plus worker lookups for names.
type Recorder interface {
	CreateActivity(ctx context.Context, a model.ActivityLog) error
	CreateNotification(ctx context.Context, n model.Notification) error
	GetWorkerByID(ctx context.Context, id string) (*model.Worker, error)
}

// Engine wires the three derivation rules to a dispatcher.
type Engine struct {
	rec    Recorder
	logger *slog.Logger
}

// New creates an Engine writing derived records through rec.
func New(rec Recorder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rec: rec, logger: logger}
}

// Register attaches the derivation rules to the dispatcher. Call once
// during startup, before the store is used for mutations.
func (e *Engine) Register(d *events.Dispatcher) {
	d.On(events.EntityTask, events.EventCreated, e.taskCreated)
	d.On(events.EntityTask, events.EventUpdated, e.taskUpdated)
	d.On(events.EntityTask, events.EventRelationAdded, e.assigneesAdded)
	d.On(events.EntityTask, events.EventRelationRemoved, e.assigneesRemoved)
	d.On(events.EntityComment, events.EventCreated, e.commentCreated)
}

// taskCreated records the creation of a task, attributed to its creator.
func (e *Engine) taskCreated(ctx context.Context, ev events.Event) error {
	return e.rec.CreateActivity(ctx, model.ActivityLog{
		TaskID:       &ev.Task.ID,
		UserID:       ev.Task.CreatedBy,
		ActivityType: model.ActivityCreated,
		Description:  fmt.Sprintf("Task %q created", ev.Task.Name),
	})
}

// taskUpdated records a completion entry whenever a task is saved in the
// completed state. This fires on every such save, not only on the
// false→true transition, so re-saving a completed task appends another
// entry. The user is nil and renders as "System".
func (e *Engine) taskUpdated(ctx context.Context, ev events.Event) error {
	if !ev.Task.IsCompleted {
		return nil
	}
	return e.rec.CreateActivity(ctx, model.ActivityLog{
		TaskID:       &ev.Task.ID,
		ActivityType: model.ActivityCompleted,
		Description:  fmt.Sprintf("Task %q completed", ev.Task.Name),
	})
}

// assigneesAdded produces, for each added worker, one task_assigned
// notification and one assigned activity entry. Workers are processed
// independently, best-effort: a failure for one id is collected and the
// loop continues, so one worker's failure never blocks another's
// records. The joined per-item errors surface to the caller.
func (e *Engine) assigneesAdded(ctx context.Context, ev events.Event) error {
	if ev.Relation != events.RelationAssignees {
		return nil
	}

	var errs []error
	for _, workerID := range ev.ChangedIDs {
		if err := e.notifyAssigned(ctx, ev.Task, workerID); err != nil {
			e.logger.Warn("assignment derivation failed",
				"task_id", ev.Task.ID, "worker_id", workerID, "error", err)
			errs = append(errs, fmt.Errorf("worker %s: %w", workerID, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) notifyAssigned(ctx context.Context, task *model.Task, workerID string) error {
	worker, err := e.rec.GetWorkerByID(ctx, workerID)
	if err != nil {
		return err
	}
	if err := e.rec.CreateNotification(ctx, model.Notification{
		Recipient: worker.ID,
		Type:      model.NotificationTaskAssigned,
		Title:     "New Task",
		Message:   fmt.Sprintf("You have been assigned a task: %s", task.Name),
		TaskID:    &task.ID,
	}); err != nil {
		return err
	}
	return e.rec.CreateActivity(ctx, model.ActivityLog{
		TaskID:       &task.ID,
		UserID:       &worker.ID,
		ActivityType: model.ActivityAssigned,
		Description:  fmt.Sprintf("%s assigned to task", worker.FullName()),
	})
}

// assigneesRemoved produces one unassigned activity entry per removed
// worker, best-effort. Removal sends no notification.
func (e *Engine) assigneesRemoved(ctx context.Context, ev events.Event) error {
	if ev.Relation != events.RelationAssignees {
		return nil
	}

	var errs []error
	for _, workerID := range ev.ChangedIDs {
		worker, err := e.rec.GetWorkerByID(ctx, workerID)
		if err == nil {
			err = e.rec.CreateActivity(ctx, model.ActivityLog{
				TaskID:       &ev.Task.ID,
				UserID:       &worker.ID,
				ActivityType: model.ActivityUnassigned,
				Description:  fmt.Sprintf("%s removed from task", worker.FullName()),
			})
		}
		if err != nil {
			e.logger.Warn("unassignment derivation failed",
				"task_id", ev.Task.ID, "worker_id", workerID, "error", err)
			errs = append(errs, fmt.Errorf("worker %s: %w", workerID, err))
		}
	}
	return errors.Join(errs...)
}

// commentCreated records the comment in the activity log and notifies
// every assignee except the author. The task's creator additionally gets
// a "commented on your task" notification, but only when they are not
// the author and not already in the assignee set. That exclusion check
// is the sole guard against double-notifying a creator who is also an
// assignee.
func (e *Engine) commentCreated(ctx context.Context, ev events.Event) error {
	author, err := e.rec.GetWorkerByID(ctx, ev.Comment.AuthorID)
	if err != nil {
		return fmt.Errorf("comment author %s: %w", ev.Comment.AuthorID, err)
	}

	if err := e.rec.CreateActivity(ctx, model.ActivityLog{
		TaskID:       &ev.Task.ID,
		UserID:       &author.ID,
		ActivityType: model.ActivityCommented,
		Description:  fmt.Sprintf("%s added a comment", author.FullName()),
	}); err != nil {
		return err
	}

	var errs []error
	creatorIsAssignee := false
	for _, assigneeID := range ev.AssigneeIDs {
		if ev.Task.CreatedBy != nil && assigneeID == *ev.Task.CreatedBy {
			creatorIsAssignee = true
		}
		if assigneeID == author.ID {
			continue
		}
		if err := e.rec.CreateNotification(ctx, model.Notification{
			Recipient: assigneeID,
			Type:      model.NotificationTaskCommented,
			Title:     "New Comment",
			Message:   fmt.Sprintf("%s commented on task: %s", author.FullName(), ev.Task.Name),
			TaskID:    &ev.Task.ID,
		}); err != nil {
			e.logger.Warn("comment notification failed",
				"task_id", ev.Task.ID, "recipient_id", assigneeID, "error", err)
			errs = append(errs, fmt.Errorf("recipient %s: %w", assigneeID, err))
		}
	}

	if ev.Task.CreatedBy != nil && *ev.Task.CreatedBy != author.ID && !creatorIsAssignee {
		if err := e.rec.CreateNotification(ctx, model.Notification{
			Recipient: *ev.Task.CreatedBy,
			Type:      model.NotificationTaskCommented,
			Title:     "New Comment",
			Message:   fmt.Sprintf("%s commented on your task: %s", author.FullName(), ev.Task.Name),
			TaskID:    &ev.Task.ID,
		}); err != nil {
			e.logger.Warn("creator comment notification failed",
				"task_id", ev.Task.ID, "recipient_id", *ev.Task.CreatedBy, "error", err)
			errs = append(errs, fmt.Errorf("recipient %s: %w", *ev.Task.CreatedBy, err))
		}
	}

	return errors.Join(errs...)
}
