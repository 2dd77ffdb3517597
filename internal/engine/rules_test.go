package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"taskhub/internal/events"
	"taskhub/internal/model"
)

// fakeRecorder captures derived-record writes and serves worker lookups
// from a fixed map.
type fakeRecorder struct {
	workers       map[string]*model.Worker
	activities    []model.ActivityLog
	notifications []model.Notification

	failNotifyFor map[string]bool
}

func (f *fakeRecorder) CreateActivity(ctx context.Context, a model.ActivityLog) error {
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeRecorder) CreateNotification(ctx context.Context, n model.Notification) error {
	if f.failNotifyFor[n.Recipient] {
		return fmt.Errorf("notification store unavailable")
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeRecorder) GetWorkerByID(ctx context.Context, id string) (*model.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %s: not found", id)
	}
	return w, nil
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		workers: map[string]*model.Worker{
			"alice": {ID: "alice", Username: "alice", FirstName: "Alice", LastName: "Archer"},
			"bob":   {ID: "bob", Username: "bob", FirstName: "Bob", LastName: "Builder"},
			"carol": {ID: "carol", Username: "carol", FirstName: "Carol", LastName: "Chen"},
		},
		failNotifyFor: map[string]bool{},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeRecorder, *events.Dispatcher) {
	t.Helper()
	rec := newFakeRecorder()
	e := New(rec, nil)
	d := events.NewDispatcher()
	e.Register(d)
	return e, rec, d
}

func emit(t *testing.T, d *events.Dispatcher, ev events.Event) error {
	t.Helper()
	return d.Emit(context.Background(), ev)
}

func TestTaskCreatedRecordsOneActivity(t *testing.T) {
	_, rec, d := newTestEngine(t)

	creator := "alice"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventCreated, Task: task,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.activities) != 1 {
		t.Fatalf("got %d activity entries, want 1", len(rec.activities))
	}
	a := rec.activities[0]
	if a.ActivityType != model.ActivityCreated {
		t.Errorf("activity type = %q, want %q", a.ActivityType, model.ActivityCreated)
	}
	if a.UserID == nil || *a.UserID != "alice" {
		t.Errorf("activity user = %v, want alice", a.UserID)
	}
	if a.Description != `Task "Write report" created` {
		t.Errorf("description = %q", a.Description)
	}
	if len(rec.notifications) != 0 {
		t.Errorf("creation produced %d notifications, want 0", len(rec.notifications))
	}
}

func TestTaskUpdatedIncompleteRecordsNothing(t *testing.T) {
	_, rec, d := newTestEngine(t)

	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventUpdated,
		Task: &model.Task{ID: "t1", Name: "Write report"},
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.activities) != 0 || len(rec.notifications) != 0 {
		t.Errorf("incomplete update produced %d activities, %d notifications",
			len(rec.activities), len(rec.notifications))
	}
}

func TestTaskUpdatedCompletedRecordsSystemActivity(t *testing.T) {
	_, rec, d := newTestEngine(t)

	task := &model.Task{ID: "t1", Name: "Write report", IsCompleted: true}
	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventUpdated, Task: task,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.activities) != 1 {
		t.Fatalf("got %d activity entries, want 1", len(rec.activities))
	}
	a := rec.activities[0]
	if a.ActivityType != model.ActivityCompleted {
		t.Errorf("activity type = %q, want %q", a.ActivityType, model.ActivityCompleted)
	}
	if a.UserID != nil {
		t.Errorf("completion entry has user %v, want nil (System)", a.UserID)
	}
}

func TestTaskUpdatedCompletedFiresOnEverySave(t *testing.T) {
	_, rec, d := newTestEngine(t)

	task := &model.Task{ID: "t1", Name: "Write report", IsCompleted: true}
	for i := 0; i < 2; i++ {
		if err := emit(t, d, events.Event{
			Entity: events.EntityTask, Kind: events.EventUpdated, Task: task,
		}); err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	if len(rec.activities) != 2 {
		t.Errorf("two completed saves produced %d entries, want 2", len(rec.activities))
	}
}

func TestAssigneesAddedNotifiesEachWorker(t *testing.T) {
	_, rec, d := newTestEngine(t)

	task := &model.Task{ID: "t1", Name: "Write report"}
	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventRelationAdded, Task: task,
		Relation:    events.RelationAssignees,
		ChangedIDs:  []string{"alice", "bob"},
		AssigneeIDs: []string{"alice", "bob"},
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(rec.notifications))
	}
	if len(rec.activities) != 2 {
		t.Fatalf("got %d activity entries, want 2", len(rec.activities))
	}

	n := rec.notifications[0]
	if n.Recipient != "alice" {
		t.Errorf("first recipient = %q, want alice", n.Recipient)
	}
	if n.Type != model.NotificationTaskAssigned {
		t.Errorf("type = %q, want %q", n.Type, model.NotificationTaskAssigned)
	}
	if n.Title != "New Task" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Message != "You have been assigned a task: Write report" {
		t.Errorf("message = %q", n.Message)
	}

	a := rec.activities[0]
	if a.ActivityType != model.ActivityAssigned {
		t.Errorf("activity type = %q, want %q", a.ActivityType, model.ActivityAssigned)
	}
	if a.Description != "Alice Archer assigned to task" {
		t.Errorf("description = %q", a.Description)
	}
}

func TestAssigneesAddedBestEffortOnFailure(t *testing.T) {
	_, rec, d := newTestEngine(t)
	rec.failNotifyFor["alice"] = true

	task := &model.Task{ID: "t1", Name: "Write report"}
	err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventRelationAdded, Task: task,
		Relation:   events.RelationAssignees,
		ChangedIDs: []string{"alice", "bob"},
	})
	if err == nil {
		t.Fatal("expected joined error for failed worker")
	}
	if !strings.Contains(err.Error(), "alice") {
		t.Errorf("error %q does not name the failed worker", err)
	}

	// bob still got his records despite alice's failure
	if len(rec.notifications) != 1 || rec.notifications[0].Recipient != "bob" {
		t.Errorf("notifications = %+v, want exactly bob's", rec.notifications)
	}
}

func TestAssigneesAddedIgnoresOtherRelations(t *testing.T) {
	_, rec, d := newTestEngine(t)

	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventRelationAdded,
		Task:       &model.Task{ID: "t1", Name: "Write report"},
		Relation:   "tags",
		ChangedIDs: []string{"tag1"},
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.notifications) != 0 || len(rec.activities) != 0 {
		t.Error("tag relation change produced derived records")
	}
}

func TestAssigneesRemovedRecordsActivityOnly(t *testing.T) {
	_, rec, d := newTestEngine(t)

	task := &model.Task{ID: "t1", Name: "Write report"}
	if err := emit(t, d, events.Event{
		Entity: events.EntityTask, Kind: events.EventRelationRemoved, Task: task,
		Relation:   events.RelationAssignees,
		ChangedIDs: []string{"bob"},
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.notifications) != 0 {
		t.Errorf("removal produced %d notifications, want 0", len(rec.notifications))
	}
	if len(rec.activities) != 1 {
		t.Fatalf("got %d activity entries, want 1", len(rec.activities))
	}
	a := rec.activities[0]
	if a.ActivityType != model.ActivityUnassigned {
		t.Errorf("activity type = %q, want %q", a.ActivityType, model.ActivityUnassigned)
	}
	if a.Description != "Bob Builder removed from task" {
		t.Errorf("description = %q", a.Description)
	}
}

func commentEvent(task *model.Task, authorID string, assigneeIDs []string) events.Event {
	return events.Event{
		Entity: events.EntityComment, Kind: events.EventCreated,
		Task: task,
		Comment: &model.Comment{
			ID: "c1", TaskID: task.ID, AuthorID: authorID, Content: "looks good",
		},
		AssigneeIDs: assigneeIDs,
	}
}

func TestCommentNotifiesAssigneesExceptAuthor(t *testing.T) {
	_, rec, d := newTestEngine(t)

	creator := "carol"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	if err := emit(t, d, commentEvent(task, "alice", []string{"alice", "bob"})); err != nil {
		t.Fatalf("emit: %v", err)
	}

	// one commented activity entry
	if len(rec.activities) != 1 {
		t.Fatalf("got %d activity entries, want 1", len(rec.activities))
	}
	if rec.activities[0].Description != "Alice Archer added a comment" {
		t.Errorf("activity description = %q", rec.activities[0].Description)
	}

	// bob (assignee, not author) and carol (creator) are notified; alice is not
	if len(rec.notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(rec.notifications))
	}
	byRecipient := map[string]model.Notification{}
	for _, n := range rec.notifications {
		byRecipient[n.Recipient] = n
	}
	if _, ok := byRecipient["alice"]; ok {
		t.Error("comment author was notified about her own comment")
	}
	if n := byRecipient["bob"]; n.Message != "Alice Archer commented on task: Write report" {
		t.Errorf("assignee message = %q", n.Message)
	}
	if n := byRecipient["carol"]; n.Message != "Alice Archer commented on your task: Write report" {
		t.Errorf("creator message = %q", n.Message)
	}
}

func TestCommentCreatorWhoIsAssigneeNotifiedOnce(t *testing.T) {
	_, rec, d := newTestEngine(t)

	creator := "carol"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	// carol is both the creator and an assignee; alice comments
	if err := emit(t, d, commentEvent(task, "alice", []string{"alice", "carol"})); err != nil {
		t.Fatalf("emit: %v", err)
	}

	count := 0
	for _, n := range rec.notifications {
		if n.Recipient == "carol" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("creator-assignee received %d notifications, want 1", count)
	}
}

func TestCommentByCreatorDoesNotNotifyCreator(t *testing.T) {
	_, rec, d := newTestEngine(t)

	creator := "alice"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	if err := emit(t, d, commentEvent(task, "alice", []string{"bob"})); err != nil {
		t.Fatalf("emit: %v", err)
	}

	for _, n := range rec.notifications {
		if n.Recipient == "alice" {
			t.Errorf("creator-author was notified: %+v", n)
		}
	}
	if len(rec.notifications) != 1 || rec.notifications[0].Recipient != "bob" {
		t.Errorf("notifications = %+v, want exactly bob's", rec.notifications)
	}
}

func TestCommentNoAssigneesStillNotifiesCreator(t *testing.T) {
	_, rec, d := newTestEngine(t)

	creator := "carol"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	if err := emit(t, d, commentEvent(task, "alice", nil)); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(rec.notifications))
	}
	n := rec.notifications[0]
	if n.Recipient != "carol" || n.Type != model.NotificationTaskCommented {
		t.Errorf("notification = %+v", n)
	}
}

func TestCommentNoCreatorNotifiesAssigneesOnly(t *testing.T) {
	_, rec, d := newTestEngine(t)

	task := &model.Task{ID: "t1", Name: "Write report"}

	if err := emit(t, d, commentEvent(task, "alice", []string{"bob"})); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(rec.notifications) != 1 || rec.notifications[0].Recipient != "bob" {
		t.Errorf("notifications = %+v, want exactly bob's", rec.notifications)
	}
}

func TestCommentBestEffortPerRecipient(t *testing.T) {
	_, rec, d := newTestEngine(t)
	rec.failNotifyFor["bob"] = true

	creator := "carol"
	task := &model.Task{ID: "t1", Name: "Write report", CreatedBy: &creator}

	err := emit(t, d, commentEvent(task, "alice", []string{"bob", "carol"}))
	if err == nil {
		t.Fatal("expected joined error for failed recipient")
	}

	// carol's two candidate notifications collapse to one (assignee path),
	// and it survives bob's failure
	got := map[string]int{}
	for _, n := range rec.notifications {
		got[n.Recipient]++
	}
	if got["carol"] != 1 {
		t.Errorf("carol received %d notifications, want 1", got["carol"])
	}
}
