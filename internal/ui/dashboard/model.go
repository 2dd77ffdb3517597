package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskhub/internal/store"
	"taskhub/internal/theme"
)

// StatsLoadedMsg carries freshly computed dashboard aggregates.
type StatsLoadedMsg struct {
	Stats *store.DashboardStats
}

// Model is the dashboard view component.
type Model struct {
	stats    *store.DashboardStats
	viewport viewport.Model
	store    store.Store
	workerID string
	width    int
	height   int
}

// New creates a new dashboard model for the given viewer.
func New(s store.Store, workerID string, width, height int) Model {
	vp := viewport.New(width, height-2)
	return Model{
		viewport: vp,
		store:    s,
		workerID: workerID,
		width:    width,
		height:   height,
	}
}

// Init returns a command that loads the dashboard stats.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that recomputes the dashboard aggregates.
func (m Model) Load() tea.Cmd {
	s := m.store
	workerID := m.workerID
	return func() tea.Msg {
		stats, err := s.GetDashboardStats(context.Background(), workerID, time.Now())
		if err != nil {
			return StatsLoadedMsg{}
		}
		return StatsLoadedMsg{Stats: stats}
	}
}

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(StatsLoadedMsg); ok {
		m.stats = msg.Stats
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if m.stats == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading dashboard...")
	}
	return m.viewport.View()
}

// renderContent builds the dashboard content string for the viewport.
func (m Model) renderContent() string {
	stats := m.stats
	var sections []string

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	sections = append(sections, headerStyle.Render("Overview"))
	sections = append(sections, fmt.Sprintf(
		"%s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Total:"),
		valueStyle.Render(fmt.Sprint(stats.TotalTasks)),
		labelStyle.Render("Open:"),
		valueStyle.Render(fmt.Sprint(stats.IncompleteTasks)),
		labelStyle.Render("Done:"),
		valueStyle.Render(fmt.Sprint(stats.CompletedTasks)),
		labelStyle.Render("Overdue:"),
		theme.OverdueStyle.Render(fmt.Sprint(stats.OverdueTasks)),
	))
	sections = append(sections, "")

	sections = append(sections, headerStyle.Render("My Tasks"))
	sections = append(sections, fmt.Sprintf(
		"%s %s   %s %s",
		labelStyle.Render("Open:"),
		valueStyle.Render(fmt.Sprint(stats.MyOpenTasks)),
		labelStyle.Render("Completed:"),
		valueStyle.Render(fmt.Sprint(stats.MyCompletedTasks)),
	))
	sections = append(sections, "")

	if len(stats.PriorityCounts) > 0 {
		sections = append(sections, headerStyle.Render("Open by Priority"))
		for _, pc := range stats.PriorityCounts {
			sections = append(sections, fmt.Sprintf(
				"  %s %s",
				theme.PriorityStyle(pc.Priority).Render(pc.Priority+":"),
				valueStyle.Render(fmt.Sprint(pc.Count)),
			))
		}
		sections = append(sections, "")
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))

	if len(stats.UpcomingTasks) > 0 {
		sections = append(sections, separator)
		sections = append(sections, headerStyle.Render("Due This Week"))
		for _, t := range stats.UpcomingTasks {
			sections = append(sections, fmt.Sprintf(
				"  %s %s %s",
				labelStyle.Render(t.Deadline.Format("Jan 02")),
				theme.PriorityStyle(t.Priority).Render("•"),
				t.Name,
			))
		}
		sections = append(sections, "")
	}

	if len(stats.RecentActivity) > 0 {
		sections = append(sections, separator)
		sections = append(sections, headerStyle.Render("Recent Activity"))
		userStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
		for _, a := range stats.RecentActivity {
			sections = append(sections, fmt.Sprintf(
				"  %s  %s  %s",
				labelStyle.Render(a.CreatedAt.Format("Jan 02 15:04")),
				userStyle.Render(a.DisplayUser()),
				a.Description,
			))
		}
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
