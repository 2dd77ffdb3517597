package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/events"
	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/tests/testutil"
)

func TestCreateTaskDefaultsAndEvent(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)

	task, err := s.CreateTask(context.Background(), model.Task{
		Name:     "Write report",
		Deadline: time.Now().AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == "" {
		t.Error("expected generated ID")
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want %q", task.Priority, model.PriorityMedium)
	}

	ev := rec.last(t)
	if ev.Entity != events.EntityTask || ev.Kind != events.EventCreated {
		t.Errorf("emitted %s/%s, want task/created", ev.Entity, ev.Kind)
	}
	if ev.Task == nil || ev.Task.ID != task.ID {
		t.Errorf("event task = %+v, want id %s", ev.Task, task.ID)
	}
}

func TestCreateTaskRejectsPastDeadline(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)

	_, err := s.CreateTask(context.Background(), model.Task{
		Name:     "Too late",
		Deadline: time.Now().AddDate(0, 0, -1),
	})
	if !errors.Is(err, model.ErrDeadlinePast) {
		t.Fatalf("err = %v, want ErrDeadlinePast", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("rejected create emitted %d events", len(rec.events))
	}
}

func TestCreateTaskRequiresName(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.CreateTask(context.Background(), model.Task{
		Name:     "   ",
		Deadline: time.Now().AddDate(0, 0, 1),
	})
	if err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestUpdateTaskKeepsPastDeadlineEditable(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)
	task := seedTask(t, s, "Old task")
	rec.reset()

	task.Deadline = time.Now().AddDate(0, 0, -30)
	task.Description = "still editable"
	updated, err := s.UpdateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("update with past deadline: %v", err)
	}
	if updated.Description != "still editable" {
		t.Errorf("description = %q", updated.Description)
	}

	ev := rec.last(t)
	if ev.Kind != events.EventUpdated {
		t.Errorf("emitted kind %s, want updated", ev.Kind)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)

	_, err := s.UpdateTask(context.Background(), model.Task{
		ID:       "missing",
		Name:     "Ghost",
		Deadline: time.Now().AddDate(0, 0, 1),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	alice := seedWorker(t, s, "w1", "alice")
	task := seedTask(t, s, "Doomed")
	if err := s.AddAssignees(ctx, task.ID, []string{alice.ID}); err != nil {
		t.Fatalf("add assignee: %v", err)
	}
	if _, err := s.CreateComment(ctx, model.Comment{
		TaskID: task.ID, AuthorID: alice.ID, Content: "soon gone",
	}); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := s.CreateNotification(ctx, model.Notification{
		Recipient: alice.ID,
		Type:      model.NotificationTaskAssigned,
		Title:     "New Task",
		Message:   "x",
		TaskID:    &task.ID,
	}); err != nil {
		t.Fatalf("create notification: %v", err)
	}

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	if _, err := s.GetTaskByID(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
	comments, err := s.GetCommentsForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get comments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived cascade: %d", len(comments))
	}
	notifs, err := s.GetNotifications(ctx, alice.ID, store.NotificationFilter{})
	if err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	if len(notifs) != 0 {
		t.Errorf("notifications survived cascade: %d", len(notifs))
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)
	if err := s.DeleteTask(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetTasksFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	alice := seedWorker(t, s, "w1", "alice")
	deadline := time.Now().AddDate(0, 0, 3)

	open, err := s.CreateTask(ctx, model.Task{
		Name: "Fix login bug", Priority: model.PriorityHigh, Deadline: deadline,
	})
	if err != nil {
		t.Fatal(err)
	}
	done, err := s.CreateTask(ctx, model.Task{
		Name: "Ship release notes", Priority: model.PriorityLow,
		Deadline: deadline, IsCompleted: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddAssignees(ctx, open.ID, []string{alice.ID}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		filter store.TaskFilter
		want   []string
	}{
		{"all", store.TaskFilter{}, []string{open.ID, done.ID}},
		{"completed", store.TaskFilter{Status: strPtr("completed")}, []string{done.ID}},
		{"incomplete", store.TaskFilter{Status: strPtr("incomplete")}, []string{open.ID}},
		{"priority", store.TaskFilter{Priority: strPtr(model.PriorityHigh)}, []string{open.ID}},
		{"assignee", store.TaskFilter{AssigneeID: strPtr(alice.ID)}, []string{open.ID}},
		{"search", store.TaskFilter{Query: strPtr("login")}, []string{open.ID}},
		{"search miss", store.TaskFilter{Query: strPtr("nonexistent")}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks, err := s.GetTasks(ctx, tc.filter)
			if err != nil {
				t.Fatalf("get tasks: %v", err)
			}
			got := make(map[string]bool, len(tasks))
			for _, task := range tasks {
				got[task.ID] = true
			}
			if len(tasks) != len(tc.want) {
				t.Fatalf("got %d tasks, want %d", len(tasks), len(tc.want))
			}
			for _, id := range tc.want {
				if !got[id] {
					t.Errorf("missing task %s", id)
				}
			}
		})
	}
}

func TestGetTasksSortByName(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	seedTask(t, s, "Charlie")
	seedTask(t, s, "Alpha")
	seedTask(t, s, "Bravo")

	tasks, err := s.GetTasks(ctx, store.TaskFilter{SortBy: "name"})
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	want := []string{"Alpha", "Bravo", "Charlie"}
	for i, name := range want {
		if tasks[i].Name != name {
			t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Name, name)
		}
	}

	tasks, err = s.GetTasks(ctx, store.TaskFilter{SortBy: "name", SortDesc: true})
	if err != nil {
		t.Fatalf("get tasks desc: %v", err)
	}
	if tasks[0].Name != "Charlie" {
		t.Errorf("desc first = %q, want Charlie", tasks[0].Name)
	}
}

func TestGetTasksRejectsUnknownSortColumn(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)

	seedTask(t, s, "Only one")

	// Anything outside the allowlist falls back to created_at instead of
	// being interpolated into the query.
	tasks, err := s.GetTasks(context.Background(), store.TaskFilter{
		SortBy: "name; DROP TABLE tasks",
	})
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("got %d tasks, want 1", len(tasks))
	}
}

func TestGetTasksLimitOffset(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)

	seedTask(t, s, "Alpha")
	seedTask(t, s, "Bravo")
	seedTask(t, s, "Charlie")

	tasks, err := s.GetTasks(context.Background(), store.TaskFilter{
		SortBy: "name", Limit: 2, Offset: 1,
	})
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "Bravo" || tasks[1].Name != "Charlie" {
		names := make([]string, len(tasks))
		for i, task := range tasks {
			names[i] = task.Name
		}
		t.Errorf("page = %v, want [Bravo Charlie]", names)
	}
}

func TestAddAssigneesEmitsOnlyActualChanges(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)
	ctx := context.Background()

	seedWorker(t, s, "w1", "alice")
	seedWorker(t, s, "w2", "bob")
	task := seedTask(t, s, "Shared work")
	rec.reset()

	if err := s.AddAssignees(ctx, task.ID, []string{"w1"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	ev := rec.last(t)
	if ev.Kind != events.EventRelationAdded || ev.Relation != events.RelationAssignees {
		t.Fatalf("emitted %s on %q", ev.Kind, ev.Relation)
	}
	if len(ev.ChangedIDs) != 1 || ev.ChangedIDs[0] != "w1" {
		t.Errorf("changed ids = %v, want [w1]", ev.ChangedIDs)
	}

	rec.reset()

	// w1 is already assigned: only w2 counts as a change, but the snapshot
	// carries the full post-change set.
	if err := s.AddAssignees(ctx, task.ID, []string{"w1", "w2"}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	ev = rec.last(t)
	if len(ev.ChangedIDs) != 1 || ev.ChangedIDs[0] != "w2" {
		t.Errorf("changed ids = %v, want [w2]", ev.ChangedIDs)
	}
	if len(ev.AssigneeIDs) != 2 || ev.AssigneeIDs[0] != "w1" || ev.AssigneeIDs[1] != "w2" {
		t.Errorf("snapshot = %v, want [w1 w2]", ev.AssigneeIDs)
	}
}

func TestAddAssigneesNoOpEmitsNothing(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)
	ctx := context.Background()

	seedWorker(t, s, "w1", "alice")
	task := seedTask(t, s, "Quiet task")
	if err := s.AddAssignees(ctx, task.ID, []string{"w1"}); err != nil {
		t.Fatal(err)
	}
	rec.reset()

	if err := s.AddAssignees(ctx, task.ID, []string{"w1"}); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	if err := s.AddAssignees(ctx, task.ID, nil); err != nil {
		t.Fatalf("empty add: %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("no-op adds emitted %d events", len(rec.events))
	}
}

func TestRemoveAssignees(t *testing.T) {
	s := testutil.NewTestStore(t)
	rec := attachRecorder(s)
	ctx := context.Background()

	seedWorker(t, s, "w1", "alice")
	seedWorker(t, s, "w2", "bob")
	task := seedTask(t, s, "Shrinking team")
	if err := s.AddAssignees(ctx, task.ID, []string{"w1", "w2"}); err != nil {
		t.Fatal(err)
	}
	rec.reset()

	if err := s.RemoveAssignees(ctx, task.ID, []string{"w2", "w-unknown"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ev := rec.last(t)
	if ev.Kind != events.EventRelationRemoved {
		t.Fatalf("emitted kind %s, want relationship_removed", ev.Kind)
	}
	if len(ev.ChangedIDs) != 1 || ev.ChangedIDs[0] != "w2" {
		t.Errorf("changed ids = %v, want [w2]", ev.ChangedIDs)
	}
	if len(ev.AssigneeIDs) != 1 || ev.AssigneeIDs[0] != "w1" {
		t.Errorf("snapshot = %v, want [w1]", ev.AssigneeIDs)
	}

	rec.reset()
	if err := s.RemoveAssignees(ctx, task.ID, []string{"w2"}); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("removing absent assignee emitted %d events", len(rec.events))
	}
}

func TestAddAssigneesUnknownTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	seedWorker(t, s, "w1", "alice")

	err := s.AddAssignees(context.Background(), "missing", []string{"w1"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetTaskByIDLoadsAssigneesAndTags(t *testing.T) {
	s := testutil.NewTestStore(t)
	attachRecorder(s)
	ctx := context.Background()

	seedWorker(t, s, "w1", "alice")
	tag, err := s.CreateTag(ctx, model.Tag{Name: "backend"})
	if err != nil {
		t.Fatal(err)
	}
	task := seedTask(t, s, "Tagged task")
	if err := s.AddAssignees(ctx, task.ID, []string{"w1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTaskTags(ctx, task.ID, []string{tag.ID}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(got.Assignees) != 1 || got.Assignees[0].Username != "alice" {
		t.Errorf("assignees = %+v", got.Assignees)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "backend" {
		t.Errorf("tags = %+v", got.Tags)
	}
}

func TestTaskTypes(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTaskType(ctx, model.TaskType{Name: "Bug"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTaskType(ctx, model.TaskType{Name: "Feature"}); err != nil {
		t.Fatal(err)
	}

	types, err := s.GetTaskTypes(ctx)
	if err != nil {
		t.Fatalf("get task types: %v", err)
	}
	if len(types) != 2 || types[0].Name != "Bug" || types[1].Name != "Feature" {
		t.Errorf("types = %+v", types)
	}
}
