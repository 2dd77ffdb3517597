package store_test

import (
	"context"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/tests/testutil"
)

func logActivity(t *testing.T, s *store.SQLiteStore, taskID string, userID *string, activityType, desc string, at time.Time) {
	t.Helper()
	err := s.CreateActivity(context.Background(), model.ActivityLog{
		TaskID:       &taskID,
		UserID:       userID,
		ActivityType: activityType,
		Description:  desc,
		CreatedAt:    at,
	})
	if err != nil {
		t.Fatalf("creating activity: %v", err)
	}
}

func TestActivityForTaskNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	alice := seedWorker(t, s, "w1", "alice")
	task := seedTask(t, s, "Audited task")
	other := seedTask(t, s, "Other task")

	base := time.Now().UTC().Add(-time.Hour)
	logActivity(t, s, task.ID, &alice.ID, model.ActivityCreated, "created", base)
	logActivity(t, s, task.ID, &alice.ID, model.ActivityCompleted, "completed", base.Add(time.Minute))
	logActivity(t, s, other.ID, &alice.ID, model.ActivityCreated, "other created", base)

	entries, err := s.ActivityForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("activity for task: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Description != "completed" || entries[1].Description != "created" {
		t.Errorf("order = [%s %s], want newest first",
			entries[0].Description, entries[1].Description)
	}
	if entries[0].UserName != "alice Tester" {
		t.Errorf("user name = %q, want %q", entries[0].UserName, "alice Tester")
	}
}

func TestActivityDisplayUserSystem(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	task := seedTask(t, s, "System task")
	logActivity(t, s, task.ID, nil, model.ActivityCompleted, "marked completed", time.Now().UTC())

	entries, err := s.ActivityForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("activity for task: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].DisplayUser(); got != "System" {
		t.Errorf("display user = %q, want System", got)
	}
}

func TestRecentActivityLimit(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	alice := seedWorker(t, s, "w1", "alice")
	task := seedTask(t, s, "Chatty task")

	base := time.Now().UTC().Add(-time.Hour)
	for i, desc := range []string{"one", "two", "three"} {
		logActivity(t, s, task.ID, &alice.ID, model.ActivityUpdated, desc,
			base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := s.RecentActivity(ctx, 2)
	if err != nil {
		t.Fatalf("recent activity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Description != "three" || entries[1].Description != "two" {
		t.Errorf("order = [%s %s], want [three two]",
			entries[0].Description, entries[1].Description)
	}
}
