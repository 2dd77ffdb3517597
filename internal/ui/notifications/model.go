package notifications

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskhub/internal/keys"
	"taskhub/internal/model"
	"taskhub/internal/store"
	"taskhub/internal/theme"
)

// LoadedMsg is sent when the inbox has been loaded from the store.
type LoadedMsg struct {
	Notifications []model.Notification
	UnreadCount   int
}

// OpenTaskMsg asks the parent to open the task a notification points at.
type OpenTaskMsg struct {
	TaskID string
}

// notificationItem wraps a model.Notification for the bubbles list.
type notificationItem struct {
	n model.Notification
}

func (i notificationItem) FilterValue() string { return i.n.Title }

// itemDelegate renders one inbox row.
type itemDelegate struct{}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(notificationItem)
	if !ok {
		return
	}

	n := ni.n
	isSelected := index == m.Index()

	var marker string
	if n.IsRead {
		marker = " "
	} else {
		marker = theme.UnreadStyle.Render("●")
	}

	typeBadge := theme.NotificationStyle(n.Type).Render(n.Title)

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(n.CreatedAt.Format("Jan 02 15:04"))

	line := fmt.Sprintf("%s %s %s  %s", marker, typeBadge, n.Message, timeStr)

	if n.IsRead {
		line = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// Model is the notification inbox view component.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	recipientID string
	unreadOnly  bool
	unreadCount int
	width       int
	height      int
}

// New creates a new inbox model for the given recipient.
func New(s store.Store, k *keys.KeyMap, recipientID string, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		recipientID: recipientID,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the inbox.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// UnreadCount returns the recipient's current unread total.
func (m Model) UnreadCount() int {
	return m.unreadCount
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = notificationItem{n: n}
		}
		m.unreadCount = msg.UnreadCount
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(notificationItem)
			if !ok || item.n.TaskID == nil {
				return m, nil
			}
			taskID := *item.n.TaskID
			return m, tea.Sequence(
				m.markRead(item.n.ID),
				func() tea.Msg { return OpenTaskMsg{TaskID: taskID} },
			)

		case key.Matches(msg, m.keys.MarkRead):
			item, ok := m.list.SelectedItem().(notificationItem)
			if !ok {
				return m, nil
			}
			return m, tea.Sequence(m.markRead(item.n.ID), m.Load())

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, tea.Sequence(m.markAllRead(), m.Load())

		case key.Matches(msg, m.keys.Search):
			m.unreadOnly = !m.unreadOnly
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.unreadOnly {
			return style.Render("No unread notifications.")
		}
		return style.Render("No notifications.")
	}
	return m.list.View()
}

// Load returns a tea.Cmd that queries the inbox with the current filter.
func (m Model) Load() tea.Cmd {
	s := m.store
	recipientID := m.recipientID
	unreadOnly := m.unreadOnly
	return func() tea.Msg {
		ns, err := s.GetNotifications(context.Background(), recipientID,
			store.NotificationFilter{UnreadOnly: unreadOnly})
		if err != nil {
			return LoadedMsg{}
		}
		count, _ := s.UnreadNotificationCount(context.Background(), recipientID)
		return LoadedMsg{Notifications: ns, UnreadCount: count}
	}
}

func (m Model) markRead(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		s.MarkNotificationRead(context.Background(), id)
		return nil
	}
}

func (m Model) markAllRead() tea.Cmd {
	s := m.store
	recipientID := m.recipientID
	return func() tea.Msg {
		s.MarkAllNotificationsRead(context.Background(), recipientID)
		return nil
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
