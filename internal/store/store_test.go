package store_test

import (
	"context"
	"testing"
	"time"

	"taskhub/internal/events"
	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/tests/testutil"
)

// eventRecorder captures every event the store emits so tests can assert
// on trigger-point behavior without wiring the full engine.
type eventRecorder struct {
	events []events.Event
}

func attachRecorder(s *store.SQLiteStore) *eventRecorder {
	r := &eventRecorder{}
	d := events.NewDispatcher()
	record := func(ctx context.Context, ev events.Event) error {
		r.events = append(r.events, ev)
		return nil
	}
	for _, entity := range []events.EntityKind{events.EntityTask, events.EntityComment} {
		for _, kind := range []events.EventKind{
			events.EventCreated, events.EventUpdated,
			events.EventRelationAdded, events.EventRelationRemoved,
		} {
			d.On(entity, kind, record)
		}
	}
	s.SetDispatcher(d)
	return r
}

func (r *eventRecorder) last(t *testing.T) events.Event {
	t.Helper()
	if len(r.events) == 0 {
		t.Fatal("no events recorded")
	}
	return r.events[len(r.events)-1]
}

func (r *eventRecorder) reset() {
	r.events = nil
}

func seedWorker(t *testing.T, s *store.SQLiteStore, id, username string) model.Worker {
	t.Helper()
	w, err := s.CreateWorker(context.Background(), model.Worker{
		ID:        id,
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Email:     username + "@example.com",
	})
	if err != nil {
		t.Fatalf("seeding worker %s: %v", username, err)
	}
	return *w
}

func seedTask(t *testing.T, s *store.SQLiteStore, name string) model.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), model.Task{
		Name:     name,
		Deadline: time.Now().AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("seeding task %s: %v", name, err)
	}
	return *task
}

func strPtr(s string) *string { return &s }

func TestMigrationsAreIdempotent(t *testing.T) {
	// NewTestStore runs all migrations; opening a second store against the
	// same in-memory DSN would not share state, so instead verify the store
	// is usable right after migration.
	s := testutil.NewTestStore(t)
	if _, err := s.GetTasks(context.Background(), store.TaskFilter{}); err != nil {
		t.Fatalf("freshly migrated store unusable: %v", err)
	}
}
