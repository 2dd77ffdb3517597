package store

import (
	"context"
	"fmt"
	"time"

	"taskhub/internal/model"
)

// upcomingWindow is how far ahead the dashboard's "approaching deadline"
// list looks.
const upcomingWindow = 7

// GetDashboardStats computes the aggregate numbers for the dashboard
// view: overall totals, the viewer's own counts, per-priority open
// counts, tasks due within the next week, and recent activity.
func (s *SQLiteStore) GetDashboardStats(
	ctx context.Context,
	workerID string,
	now time.Time,
) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := s.db.GetContext(ctx, &stats.TotalTasks,
		"SELECT COUNT(*) FROM tasks")
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	err = s.db.GetContext(ctx, &stats.CompletedTasks,
		"SELECT COUNT(*) FROM tasks WHERE is_completed = 1")
	if err != nil {
		return nil, fmt.Errorf("counting completed tasks: %w", err)
	}
	stats.IncompleteTasks = stats.TotalTasks - stats.CompletedTasks

	today := startOfDay(now)
	err = s.db.GetContext(ctx, &stats.OverdueTasks,
		"SELECT COUNT(*) FROM tasks WHERE is_completed = 0 AND deadline < ?", today)
	if err != nil {
		return nil, fmt.Errorf("counting overdue tasks: %w", err)
	}

	err = s.db.GetContext(ctx, &stats.MyOpenTasks, `
		SELECT COUNT(*) FROM tasks
		WHERE is_completed = 0
			AND id IN (SELECT task_id FROM task_assignees WHERE worker_id = ?)`,
		workerID)
	if err != nil {
		return nil, fmt.Errorf("counting my open tasks: %w", err)
	}
	err = s.db.GetContext(ctx, &stats.MyCompletedTasks, `
		SELECT COUNT(*) FROM tasks
		WHERE is_completed = 1
			AND id IN (SELECT task_id FROM task_assignees WHERE worker_id = ?)`,
		workerID)
	if err != nil {
		return nil, fmt.Errorf("counting my completed tasks: %w", err)
	}

	err = s.db.SelectContext(ctx, &stats.PriorityCounts, `
		SELECT priority, COUNT(*) AS count FROM tasks
		WHERE is_completed = 0
		GROUP BY priority
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("counting tasks by priority: %w", err)
	}

	upcoming, err := s.GetTasksDueWithin(ctx, now, upcomingWindow)
	if err != nil {
		return nil, err
	}
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	stats.UpcomingTasks = upcoming

	recent, err := s.RecentActivity(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity = recent

	return stats, nil
}

// GetTasksDueWithin retrieves incomplete tasks whose deadline falls
// between the start of `from`'s day and `days` days later, ordered by
// deadline ascending. Used by the dashboard and the reminder poller.
func (s *SQLiteStore) GetTasksDueWithin(
	ctx context.Context,
	from time.Time,
	days int,
) ([]model.Task, error) {
	start := startOfDay(from)
	end := start.AddDate(0, 0, days+1)

	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM tasks
		WHERE is_completed = 0 AND deadline >= ? AND deadline < ?
		ORDER BY deadline`, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		assignees, err := s.getAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}
	return tasks, nil
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
