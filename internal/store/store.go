package store

import (
	"context"
	"errors"
	"time"

	"taskhub/internal/model"
)

// ErrNotFound indicates a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Status     *string // "completed", "incomplete", or nil (all)
	Priority   *string
	ProjectID  *string
	AssigneeID *string
	Query      *string // search name + description
	SortBy     string  // "created_at", "updated_at", "deadline", "name", "priority"
	SortDesc   bool
	Limit      int
	Offset     int
}

// NotificationFilter controls inbox listing for a single recipient.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// PriorityCount is one row of the dashboard's per-priority aggregation.
type PriorityCount struct {
	Priority string `db:"priority"`
	Count    int    `db:"count"`
}

// DashboardStats aggregates the numbers shown on the dashboard view.
type DashboardStats struct {
	TotalTasks       int
	CompletedTasks   int
	IncompleteTasks  int
	OverdueTasks     int
	MyOpenTasks      int
	MyCompletedTasks int
	PriorityCounts   []PriorityCount
	UpcomingTasks    []model.Task
	RecentActivity   []model.ActivityLog
}

// Store defines the persistence interface for workers, tasks, projects,
// teams, tags, comments, activity log entries, and notifications.
// Mutations marked as trigger points emit a dispatcher event after the
// successful write.
type Store interface {
	// === Workers & positions ===

	CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error)
	UpdateWorker(ctx context.Context, w model.Worker) error
	GetWorkerByID(ctx context.Context, id string) (*model.Worker, error)
	GetWorkerByUsername(ctx context.Context, username string) (*model.Worker, error)
	GetWorkers(ctx context.Context) ([]model.Worker, error)
	CreatePosition(ctx context.Context, p model.Position) (*model.Position, error)
	DeletePosition(ctx context.Context, id string) error
	GetPositions(ctx context.Context) ([]model.Position, error)

	// === Tasks (trigger points: create, update, assignee changes) ===

	CreateTask(ctx context.Context, t model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	AddAssignees(ctx context.Context, taskID string, workerIDs []string) error
	RemoveAssignees(ctx context.Context, taskID string, workerIDs []string) error
	SetTaskTags(ctx context.Context, taskID string, tagIDs []string) error

	// === Task types ===

	CreateTaskType(ctx context.Context, tt model.TaskType) (*model.TaskType, error)
	GetTaskTypes(ctx context.Context) ([]model.TaskType, error)

	// === Projects & teams ===

	CreateProject(ctx context.Context, p model.Project) (*model.Project, error)
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, id string) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	GetProjects(ctx context.Context) ([]model.Project, error)
	CreateTeam(ctx context.Context, t model.Team) (*model.Team, error)
	DeleteTeam(ctx context.Context, id string) error
	GetTeamByID(ctx context.Context, id string) (*model.Team, error)
	GetTeams(ctx context.Context) ([]model.Team, error)
	AddTeamMember(ctx context.Context, teamID, workerID string) error
	RemoveTeamMember(ctx context.Context, teamID, workerID string) error
	SetTeamProject(ctx context.Context, teamID string, projectID *string) error

	// === Tags ===

	CreateTag(ctx context.Context, tag model.Tag) (*model.Tag, error)
	DeleteTag(ctx context.Context, id string) error
	GetTags(ctx context.Context) ([]model.Tag, error)
	GetTagsForTask(ctx context.Context, taskID string) ([]model.Tag, error)

	// === Comments (trigger point: create) ===

	CreateComment(ctx context.Context, c model.Comment) (*model.Comment, error)
	GetCommentsForTask(ctx context.Context, taskID string) ([]model.Comment, error)

	// === Activity log (derived; append-only) ===

	CreateActivity(ctx context.Context, a model.ActivityLog) error
	ActivityForTask(ctx context.Context, taskID string) ([]model.ActivityLog, error)
	RecentActivity(ctx context.Context, limit int) ([]model.ActivityLog, error)

	// === Notifications (derived; mutated only by mark-read) ===

	CreateNotification(ctx context.Context, n model.Notification) error
	NotificationExists(ctx context.Context, recipientID, taskID, notificationType string) (bool, error)
	GetNotifications(ctx context.Context, recipientID string, filter NotificationFilter) ([]model.Notification, error)
	UnreadNotificationCount(ctx context.Context, recipientID string) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, recipientID string) error

	// === Dashboard ===

	GetDashboardStats(ctx context.Context, workerID string, now time.Time) (*DashboardStats, error)
	GetTasksDueWithin(ctx context.Context, from time.Time, days int) ([]model.Task, error)
}
