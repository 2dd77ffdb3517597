package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskhub/internal/model"
	"taskhub/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name }

// Title returns the task name for the list.
func (i TaskItem) Title() string { return i.Task.Name }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Priority,
		i.Task.Deadline.Format("Jan 02"),
	}
	return strings.Join(parts, " | ")
}

// TaskDelegate implements list.ItemDelegate for rendering task rows.
type TaskDelegate struct{}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	taskItem, ok := item.(TaskItem)
	if !ok {
		return
	}

	task := taskItem.Task
	isSelected := index == m.Index()

	var prefix string
	if task.IsCompleted {
		prefix = "✓"
	} else {
		prefix = "○"
	}

	priBadge := theme.PriorityStyle(task.Priority).Render(priorityLabel(task.Priority))

	deadlineStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(" " + task.Deadline.Format("Jan 02"))

	overdueStr := ""
	if task.IsOverdue(time.Now()) {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	assigneeStr := ""
	if n := len(task.Assignees); n > 0 {
		assigneeStr = lipgloss.NewStyle().
			Foreground(theme.ColorBlue).
			Render(fmt.Sprintf(" @%d", n))
	}

	tagBadge := ""
	if len(task.Tags) > 0 {
		var tagNames []string
		for _, t := range task.Tags {
			tagNames = append(tagNames, t.Name)
		}
		// Show max 2 tags to avoid overflow
		display := tagNames
		if len(display) > 2 {
			display = display[:2]
			display = append(display, "…")
		}
		tagBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" #" + strings.Join(display, ",#"))
	}

	line := fmt.Sprintf(
		"%s %s %s%s%s%s%s",
		prefix, priBadge, task.Name,
		assigneeStr, tagBadge, deadlineStr, overdueStr,
	)

	if task.IsCompleted {
		line = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// priorityLabel returns a short label for the given priority level.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityUrgent:
		return "P1"
	case model.PriorityHigh:
		return "P2"
	case model.PriorityMedium:
		return "P3"
	case model.PriorityLow:
		return "P4"
	default:
		return "P?"
	}
}
