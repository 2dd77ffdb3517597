package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskhub/internal/model"
)

// taskMutatedMsg is sent after a task mutation settles. taskID is set
// when the mutated task should be reloaded in the detail view.
type taskMutatedMsg struct {
	taskID string
	err    error
}

// formOptionsLoadedMsg carries the selectable options for the task form.
type formOptionsLoadedMsg struct {
	taskTypes []model.TaskType
	projects  []model.Project
	workers   []model.Worker
	tags      []model.Tag
}

// editReadyMsg carries the task to be edited.
type editReadyMsg struct {
	task model.Task
}

// createTask persists a new task, then applies assignees and tags.
// Each step runs its own derivation rules through the store.
func (m *Model) createTask(task model.Task, assigneeIDs, tagIDs []string) tea.Cmd {
	s := m.store
	userID := m.user.ID
	return func() tea.Msg {
		ctx := context.Background()
		task.CreatedBy = &userID
		created, err := s.CreateTask(ctx, task)
		if err != nil {
			return taskMutatedMsg{err: err}
		}
		if len(assigneeIDs) > 0 {
			if err := s.AddAssignees(ctx, created.ID, assigneeIDs); err != nil {
				return taskMutatedMsg{taskID: created.ID, err: err}
			}
		}
		if len(tagIDs) > 0 {
			if err := s.SetTaskTags(ctx, created.ID, tagIDs); err != nil {
				return taskMutatedMsg{taskID: created.ID, err: err}
			}
		}
		return taskMutatedMsg{taskID: created.ID}
	}
}

// updateTask persists field changes, then reconciles the assignee set
// and tags. Assignee reconciliation goes through AddAssignees and
// RemoveAssignees so that only actual membership changes fire
// notifications.
func (m *Model) updateTask(task model.Task, assigneeIDs, tagIDs []string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		existing, err := s.GetTaskByID(ctx, task.ID)
		if err != nil {
			return taskMutatedMsg{err: err}
		}

		existing.Name = task.Name
		existing.Description = task.Description
		existing.Priority = task.Priority
		existing.Deadline = task.Deadline
		existing.IsCompleted = task.IsCompleted
		existing.TaskTypeID = task.TaskTypeID
		existing.ProjectID = task.ProjectID

		updated, err := s.UpdateTask(ctx, *existing)
		if err != nil {
			return taskMutatedMsg{err: err}
		}

		toAdd, toRemove := diffAssignees(existing.Assignees, assigneeIDs)
		if len(toAdd) > 0 {
			if err := s.AddAssignees(ctx, updated.ID, toAdd); err != nil {
				return taskMutatedMsg{taskID: updated.ID, err: err}
			}
		}
		if len(toRemove) > 0 {
			if err := s.RemoveAssignees(ctx, updated.ID, toRemove); err != nil {
				return taskMutatedMsg{taskID: updated.ID, err: err}
			}
		}

		if err := s.SetTaskTags(ctx, updated.ID, tagIDs); err != nil {
			return taskMutatedMsg{taskID: updated.ID, err: err}
		}
		return taskMutatedMsg{taskID: updated.ID}
	}
}

// diffAssignees splits the desired membership into ids to add and
// current members to remove.
func diffAssignees(current []model.Worker, desired []string) (toAdd, toRemove []string) {
	currentSet := make(map[string]bool, len(current))
	for _, w := range current {
		currentSet[w.ID] = true
	}
	desiredSet := make(map[string]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, w := range current {
		if !desiredSet[w.ID] {
			toRemove = append(toRemove, w.ID)
		}
	}
	return toAdd, toRemove
}

// toggleComplete flips a task between open and completed.
func (m *Model) toggleComplete(taskID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		task, err := s.GetTaskByID(ctx, taskID)
		if err != nil {
			return taskMutatedMsg{err: err}
		}
		task.IsCompleted = !task.IsCompleted
		if _, err := s.UpdateTask(ctx, *task); err != nil {
			return taskMutatedMsg{taskID: taskID, err: err}
		}
		return taskMutatedMsg{taskID: taskID}
	}
}

// deleteTask removes a task from the store.
func (m *Model) deleteTask(taskID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteTask(context.Background(), taskID)
		return taskMutatedMsg{err: err}
	}
}

// addComment persists a comment by the signed-in worker, which notifies
// the task's assignees and creator.
func (m *Model) addComment(taskID, content string) tea.Cmd {
	s := m.store
	authorID := m.user.ID
	return func() tea.Msg {
		_, err := s.CreateComment(context.Background(), model.Comment{
			TaskID:   taskID,
			AuthorID: authorID,
			Content:  content,
		})
		return taskMutatedMsg{taskID: taskID, err: err}
	}
}

// loadFormOptions loads the selectable task types, projects, workers,
// and tags for the task form.
func (m *Model) loadFormOptions() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		taskTypes, _ := s.GetTaskTypes(ctx)
		projects, _ := s.GetProjects(ctx)
		workers, _ := s.GetWorkers(ctx)
		tags, _ := s.GetTags(ctx)
		return formOptionsLoadedMsg{
			taskTypes: taskTypes,
			projects:  projects,
			workers:   workers,
			tags:      tags,
		}
	}
}

// startEdit loads a task by ID and prepares the edit form.
func (m *Model) startEdit(taskID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		task, err := s.GetTaskByID(context.Background(), taskID)
		if err != nil || task == nil {
			return taskMutatedMsg{err: err}
		}
		return editReadyMsg{task: *task}
	}
}
