package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskhub/internal/keys"
	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// TaskLoadedMsg carries the loaded task with its comments and history.
type TaskLoadedMsg struct {
	Task     *model.Task
	Comments []model.Comment
	Activity []model.ActivityLog
}

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string
	TaskID string
}

// CommentSubmittedMsg carries a new comment's text to the parent.
type CommentSubmittedMsg struct {
	TaskID  string
	Content string
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	comments []model.Comment
	activity []model.ActivityLog

	viewport     viewport.Model
	store        store.Store
	keys         *keys.KeyMap
	commentMode  bool
	commentInput textinput.Model
	width        int
	height       int
	loading      bool
}

// New creates a new detail view model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	ci := textinput.New()
	ci.Placeholder = "write a comment..."
	ci.Prompt = "> "
	ci.Width = width - 4

	return Model{
		viewport:     vp,
		store:        s,
		keys:         k,
		commentInput: ci,
		width:        width,
		height:       height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Load returns a command that fetches a task with its comments and
// activity history.
func (m Model) Load(taskID string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		task, err := s.GetTaskByID(context.Background(), taskID)
		if err != nil {
			return TaskLoadedMsg{}
		}
		comments, _ := s.GetCommentsForTask(context.Background(), taskID)
		activity, _ := s.ActivityForTask(context.Background(), taskID)
		return TaskLoadedMsg{Task: task, Comments: comments, Activity: activity}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TaskLoadedMsg:
		m.task = msg.Task
		m.comments = msg.Comments
		m.activity = msg.Activity
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if m.commentMode {
			return m.handleCommentKeys(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Comment):
			if m.task != nil {
				m.commentMode = true
				m.commentInput.Reset()
				return m, m.commentInput.Focus()
			}

		case key.Matches(msg, m.keys.Complete):
			if m.task != nil {
				return m, m.action("complete")
			}

		case key.Matches(msg, m.keys.EditTask):
			if m.task != nil {
				return m, m.action("edit")
			}

		case key.Matches(msg, m.keys.Assignees):
			if m.task != nil {
				return m, m.action("assignees")
			}

		case key.Matches(msg, m.keys.DeleteTask):
			if m.task != nil {
				return m, m.action("delete")
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleCommentKeys processes key input while composing a comment.
func (m Model) handleCommentKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.commentMode = false
		content := strings.TrimSpace(m.commentInput.Value())
		if content == "" || m.task == nil {
			return m, nil
		}
		taskID := m.task.ID
		return m, func() tea.Msg {
			return CommentSubmittedMsg{TaskID: taskID, Content: content}
		}

	case "esc":
		m.commentMode = false
		m.commentInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	taskID := m.task.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, TaskID: taskID}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading task...")
	}

	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	if m.commentMode {
		commentBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.commentInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), commentBar)
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Name))

	// Badges line: completion + priority
	completionLabel := "Open"
	if task.IsCompleted {
		completionLabel = "Completed"
	}
	completionBadge := theme.CompletionStyle(task.IsCompleted).Render(completionLabel)
	priBadge := theme.PriorityStyle(task.Priority).Render(task.Priority)

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top, completionBadge, "  ", priBadge,
	)
	sections = append(sections, badgeLine)
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("Deadline:"),
		valStyle.Render(task.Deadline.Format("2006-01-02")),
	))
	if len(task.Assignees) > 0 {
		var names []string
		for _, w := range task.Assignees {
			names = append(names, w.FullName())
		}
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render("Assignees:"),
			valStyle.Render(strings.Join(names, ", ")),
		))
	}
	if len(task.Tags) > 0 {
		var names []string
		for _, t := range task.Tags {
			names = append(names, t.Name)
		}
		sections = append(sections, fmt.Sprintf(
			"%s      %s",
			metaStyle.Render("Tags:"),
			valStyle.Render(strings.Join(names, ", ")),
		))
	}
	if !task.CreatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Created:"),
			valStyle.Render(task.CreatedAt.Format("2006-01-02 15:04")),
		))
	}
	if !task.UpdatedAt.IsZero() {
		sections = append(sections, fmt.Sprintf(
			"%s   %s",
			metaStyle.Render("Updated:"),
			valStyle.Render(task.UpdatedAt.Format("2006-01-02 15:04")),
		))
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Description
	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, descHeaderStyle.Render("Description"))

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	// Comments section
	if len(m.comments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		commentHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)

		sections = append(sections, commentHeaderStyle.Render(
			fmt.Sprintf("Comments (%d)", len(m.comments)),
		))
		sections = append(sections, "")

		authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

		for _, c := range m.comments {
			header := fmt.Sprintf(
				"%s  %s",
				authorStyle.Render(c.AuthorName),
				timeStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")),
			)
			sections = append(sections, header)
			sections = append(sections, c.Content)
			sections = append(sections, "")
		}
	}

	// Activity history
	if len(m.activity) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")

		historyHeaderStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite)

		sections = append(sections, historyHeaderStyle.Render("History"))
		sections = append(sections, "")

		userStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

		for _, a := range m.activity {
			sections = append(sections, fmt.Sprintf(
				"%s  %s  %s",
				timeStyle.Render(a.CreatedAt.Format("Jan 02 15:04")),
				userStyle.Render(a.DisplayUser()),
				a.Description,
			))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Task returns the currently displayed task, if any.
func (m Model) Task() *model.Task {
	return m.task
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.commentInput.Width = width - 4
}
