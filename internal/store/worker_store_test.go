package store_test

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/tests/testutil"
)

func TestWorkerLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	w, err := s.CreateWorker(ctx, model.Worker{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Archer",
		Email:     "alice@example.com",
		IsStaff:   true,
	})
	if err != nil {
		t.Fatalf("create worker: %v", err)
	}
	if w.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := s.GetWorkerByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != w.ID || !got.IsStaff {
		t.Errorf("got %+v", got)
	}

	got.LastName = "Baker"
	if err := s.UpdateWorker(ctx, *got); err != nil {
		t.Fatalf("update worker: %v", err)
	}
	got, err = s.GetWorkerByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.FullName() != "Alice Baker" {
		t.Errorf("full name = %q", got.FullName())
	}
}

func TestWorkerValidation(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateWorker(ctx, model.Worker{Email: "x@example.com"}); err == nil {
		t.Error("expected error for missing username")
	}
	if _, err := s.CreateWorker(ctx, model.Worker{Username: "noemail"}); err == nil {
		t.Error("expected error for missing email")
	}

	seedWorker(t, s, "w1", "alice")
	if _, err := s.CreateWorker(ctx, model.Worker{
		Username: "alice", Email: "other@example.com",
	}); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestWorkerNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.GetWorkerByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get by id = %v, want ErrNotFound", err)
	}
	if _, err := s.GetWorkerByUsername(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get by username = %v, want ErrNotFound", err)
	}
	if err := s.UpdateWorker(ctx, model.Worker{ID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update = %v, want ErrNotFound", err)
	}
}

func TestGetWorkersOrdering(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, w := range []model.Worker{
		{ID: "w1", Username: "cz", FirstName: "Cara", LastName: "Zimmer", Email: "cz@example.com"},
		{ID: "w2", Username: "aa", FirstName: "Abe", LastName: "Adams", Email: "aa@example.com"},
		{ID: "w3", Username: "ba", FirstName: "Beth", LastName: "Adams", Email: "ba@example.com"},
	} {
		if _, err := s.CreateWorker(ctx, w); err != nil {
			t.Fatal(err)
		}
	}

	workers, err := s.GetWorkers(ctx)
	if err != nil {
		t.Fatalf("get workers: %v", err)
	}
	want := []string{"w2", "w3", "w1"}
	if len(workers) != len(want) {
		t.Fatalf("got %d workers, want %d", len(workers), len(want))
	}
	for i, id := range want {
		if workers[i].ID != id {
			t.Errorf("workers[%d] = %s, want %s", i, workers[i].ID, id)
		}
	}
}

func TestPositions(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePosition(ctx, model.Position{Name: "Engineer"})
	if err != nil {
		t.Fatalf("create position: %v", err)
	}

	w, err := s.CreateWorker(ctx, model.Worker{
		Username: "alice", Email: "alice@example.com",
		FirstName: "Alice", LastName: "Archer",
		Position: &p.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Deleting a position leaves its holders with no position.
	if err := s.DeletePosition(ctx, p.ID); err != nil {
		t.Fatalf("delete position: %v", err)
	}
	got, err := s.GetWorkerByID(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != nil {
		t.Errorf("position = %v, want nil after delete", got.Position)
	}

	positions, err := s.GetPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) != 0 {
		t.Errorf("positions = %+v, want none", positions)
	}
}
