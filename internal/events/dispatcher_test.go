package events

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/model"
)

func TestEmitRunsHandlersInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()

	var order []string
	d.On(EntityTask, EventCreated, func(ctx context.Context, ev Event) error {
		order = append(order, "first")
		return nil
	})
	d.On(EntityTask, EventCreated, func(ctx context.Context, ev Event) error {
		order = append(order, "second")
		return nil
	})

	err := d.Emit(context.Background(), Event{
		Entity: EntityTask,
		Kind:   EventCreated,
		Task:   &model.Task{ID: "t1"},
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran as %v, want [first second]", order)
	}
}

func TestEmitOnlyMatchingHandlers(t *testing.T) {
	d := NewDispatcher()

	calls := 0
	d.On(EntityTask, EventCreated, func(ctx context.Context, ev Event) error {
		calls++
		return nil
	})

	d.Emit(context.Background(), Event{Entity: EntityTask, Kind: EventUpdated})
	d.Emit(context.Background(), Event{Entity: EntityComment, Kind: EventCreated})

	if calls != 0 {
		t.Errorf("non-matching events invoked handler %d times", calls)
	}

	d.Emit(context.Background(), Event{Entity: EntityTask, Kind: EventCreated})
	if calls != 1 {
		t.Errorf("matching event invoked handler %d times, want 1", calls)
	}
}

func TestEmitStopsOnFirstError(t *testing.T) {
	d := NewDispatcher()

	wantErr := errors.New("handler failed")
	secondRan := false

	d.On(EntityTask, EventUpdated, func(ctx context.Context, ev Event) error {
		return wantErr
	})
	d.On(EntityTask, EventUpdated, func(ctx context.Context, ev Event) error {
		secondRan = true
		return nil
	})

	err := d.Emit(context.Background(), Event{Entity: EntityTask, Kind: EventUpdated})
	if !errors.Is(err, wantErr) {
		t.Fatalf("emit returned %v, want %v", err, wantErr)
	}
	if secondRan {
		t.Error("second handler ran after first returned an error")
	}
}

func TestEmitNoHandlers(t *testing.T) {
	d := NewDispatcher()
	if err := d.Emit(context.Background(), Event{Entity: EntityTask, Kind: EventCreated}); err != nil {
		t.Errorf("emit with no handlers: %v", err)
	}
}

func TestEmitNilDispatcher(t *testing.T) {
	var d *Dispatcher
	if err := d.Emit(context.Background(), Event{Entity: EntityTask, Kind: EventCreated}); err != nil {
		t.Errorf("emit on nil dispatcher: %v", err)
	}
}

func TestEmitPassesPayloadThrough(t *testing.T) {
	d := NewDispatcher()

	var got Event
	d.On(EntityTask, EventRelationAdded, func(ctx context.Context, ev Event) error {
		got = ev
		return nil
	})

	sent := Event{
		Entity:      EntityTask,
		Kind:        EventRelationAdded,
		Task:        &model.Task{ID: "t1", Name: "Ship it"},
		Relation:    RelationAssignees,
		ChangedIDs:  []string{"w1", "w2"},
		AssigneeIDs: []string{"w1", "w2", "w3"},
	}
	if err := d.Emit(context.Background(), sent); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if got.Task == nil || got.Task.ID != "t1" {
		t.Fatalf("handler got task %+v, want id t1", got.Task)
	}
	if got.Relation != RelationAssignees {
		t.Errorf("relation = %q, want %q", got.Relation, RelationAssignees)
	}
	if len(got.ChangedIDs) != 2 || len(got.AssigneeIDs) != 3 {
		t.Errorf("payload id sets = %v / %v", got.ChangedIDs, got.AssigneeIDs)
	}
}
