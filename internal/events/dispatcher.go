// Package events provides synchronous, in-process notification of entity
// lifecycle changes. The store emits an event after each successful
// persist; registered handlers run inline, in registration order, before
// the originating call returns. There is no queuing, retry, or
// cross-process delivery, and derived writes made by handlers do not
// re-enter the dispatcher.
package events

import (
	"context"

	"taskhub/internal/model"
)

// EntityKind identifies which entity family an event concerns.
type EntityKind string

const (
	EntityTask    EntityKind = "task"
	EntityComment EntityKind = "comment"
)

// EventKind identifies the lifecycle change that occurred.
type EventKind string

const (
	// EventCreated fires on the first persist of a new row.
	EventCreated EventKind = "created"

	// EventUpdated fires on a persist of an existing row. The payload
	// carries the new state; handlers see no field-level diff.
	EventUpdated EventKind = "updated"

	// EventRelationAdded and EventRelationRemoved fire on many-to-many
	// membership changes on a named relationship.
	EventRelationAdded   EventKind = "relationship_added"
	EventRelationRemoved EventKind = "relationship_removed"
)

// RelationAssignees is the Task↔Worker assignment relationship name.
const RelationAssignees = "assignees"

// Event is the payload delivered to handlers. Snapshot fields are
// computed inside the transaction of the triggering write, so handlers
// never need race-prone live reads of "the current member set".
type Event struct {
	Entity EntityKind
	Kind   EventKind

	// Task is the task the event concerns. For comment events it is the
	// comment's parent task.
	Task *model.Task

	// Comment is set for comment events.
	Comment *model.Comment

	// Relation names the changed relationship for relationship events.
	Relation string

	// ChangedIDs holds the counterpart ids added to or removed from the
	// relationship.
	ChangedIDs []string

	// AssigneeIDs is the task's full assignee-id set as of the
	// triggering write.
	AssigneeIDs []string
}

// Handler reacts to a single event. Handlers must be independent of
// invocation order.
type Handler func(ctx context.Context, ev Event) error

type handlerKey struct {
	entity EntityKind
	kind   EventKind
}

// Dispatcher routes emitted events to registered handlers. It is
// constructed and wired once at startup; registration is not safe for
// concurrent use with Emit.
type Dispatcher struct {
	handlers map[handlerKey][]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[handlerKey][]Handler)}
}

// On registers a handler for the given (entity, kind) pair. Multiple
// handlers may register for the same pair; they run in registration order.
func (d *Dispatcher) On(entity EntityKind, kind EventKind, h Handler) {
	k := handlerKey{entity: entity, kind: kind}
	d.handlers[k] = append(d.handlers[k], h)
}

// Emit invokes every handler registered for the event, synchronously and
// in registration order. The first handler error stops propagation and is
// returned to the caller; the triggering write is never rolled back here.
// There is no cancellation beyond the passed context: once a handler is
// entered it runs to completion.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) error {
	if d == nil {
		return nil
	}
	for _, h := range d.handlers[handlerKey{entity: ev.Entity, kind: ev.Kind}] {
		if err := h(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
