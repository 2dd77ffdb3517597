// Package app holds the root Bubble Tea model: view routing, global
// keybindings, and the commands that drive store mutations.
package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"taskhub/internal/keys"
	"taskhub/internal/model"
	"taskhub/internal/remind"
	"taskhub/internal/store"
	"taskhub/internal/ui"
	"taskhub/internal/ui/dashboard"
	"taskhub/internal/ui/detail"
	helpview "taskhub/internal/ui/help"
	"taskhub/internal/ui/notifications"
	"taskhub/internal/ui/projectmgr"
	"taskhub/internal/ui/tagmgr"
	"taskhub/internal/ui/taskform"
	"taskhub/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewList
	ViewDetail
	ViewNotifications
	ViewTaskCreate
	ViewTaskEdit
	ViewProjectList
	ViewTagList
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	user         *model.Worker
	keys         *keys.KeyMap

	dashboardView dashboard.Model
	taskList      tasklist.Model
	detailView    detail.Model
	inboxView     notifications.Model
	formView      taskform.Model
	projectView   projectmgr.Model
	tagView       tagmgr.Model
	helpView      helpview.Model

	poller      *remind.Poller
	ready       bool
	unreadCount int
	statusMsg   string
}

// New creates a new root application model for the signed-in worker.
// poller may be nil when reminders are disabled.
func New(s store.Store, user *model.Worker, p *remind.Poller) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:   ViewDashboard,
		store:         s,
		user:          user,
		keys:          k,
		dashboardView: dashboard.New(s, user.ID, 80, 24),
		taskList:      tasklist.New(s, k, 80, 24),
		detailView:    detail.New(s, k, 80, 24),
		inboxView:     notifications.New(s, k, user.ID, 80, 24),
		formView:      taskform.New(80, 24),
		projectView:   projectmgr.New(s, k, 80, 24),
		tagView:       tagmgr.New(s, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		poller:        p,
	}
}

// Init loads the dashboard, the task list, and the unread count.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dashboardView.Init(),
		m.taskList.Init(),
		m.inboxView.Load(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.dashboardView.SetSize(contentWidth, contentHeight)
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.inboxView.SetSize(contentWidth, contentHeight)
		m.formView.SetSize(contentWidth, contentHeight)
		m.projectView.SetSize(contentWidth, contentHeight)
		m.tagView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case notifications.LoadedMsg:
		m.unreadCount = msg.UnreadCount
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, cmd

	case notifications.OpenTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, tea.Batch(m.detailView.Load(msg.TaskID), m.inboxView.Load())

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, m.detailView.Load(msg.TaskID)

	case taskform.TaskCreatedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Task, msg.AssigneeIDs, msg.TagIDs)

	case taskform.TaskUpdatedMsg:
		m.currentView = ViewList
		return m, m.updateTask(msg.Task, msg.AssigneeIDs, msg.TagIDs)

	case taskform.TaskFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case formOptionsLoadedMsg:
		m.formView.SetOptions(msg.taskTypes, msg.projects, msg.workers, msg.tags)
		if m.currentView == ViewTaskCreate {
			return m, m.formView.StartCreate()
		}
		return m, nil

	case editReadyMsg:
		return m, m.formView.StartEdit(msg.task)

	case taskMutatedMsg:
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
		} else {
			m.statusMsg = ""
		}
		cmds := []tea.Cmd{m.taskList.LoadTasks(), m.inboxView.Load()}
		if m.currentView == ViewDetail && msg.taskID != "" {
			cmds = append(cmds, m.detailView.Load(msg.taskID))
		}
		if m.currentView == ViewDashboard {
			cmds = append(cmds, m.dashboardView.Load())
		}
		return m, tea.Batch(cmds...)

	case detail.TaskLoadedMsg:
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = m.previousView
		if m.currentView == ViewDetail {
			m.currentView = ViewList
		}
		return m, m.taskList.LoadTasks()

	case detail.CommentSubmittedMsg:
		return m, m.addComment(msg.TaskID, msg.Content)

	case detail.ActionMsg:
		return m.handleDetailAction(msg)

	case projectmgr.ProjectListCloseMsg:
		m.currentView = ViewList
		return m, nil

	case projectmgr.ProjectChangedMsg:
		return m, m.taskList.LoadTasks()

	case tagmgr.TagListCloseMsg:
		m.currentView = ViewList
		return m, nil

	case tagmgr.TagChangedMsg:
		return m, m.taskList.LoadTasks()

	case tea.KeyMsg:
		// Global keys that work regardless of current view
		switch {
		case msg.String() == "ctrl+c":
			m.stopPoller()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Quit):
			if m.currentView == ViewDashboard || m.currentView == ViewList {
				m.stopPoller()
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			if m.currentView != ViewTaskCreate && m.currentView != ViewTaskEdit {
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil
			}

		case key.Matches(msg, m.keys.Dashboard):
			if m.navigable() {
				m.currentView = ViewDashboard
				return m, m.dashboardView.Load()
			}

		case key.Matches(msg, m.keys.Tasks):
			if m.navigable() {
				m.currentView = ViewList
				return m, m.taskList.LoadTasks()
			}

		case key.Matches(msg, m.keys.Notifications):
			if m.navigable() {
				m.currentView = ViewNotifications
				return m, m.inboxView.Load()
			}

		case key.Matches(msg, m.keys.Refresh):
			switch m.currentView {
			case ViewDashboard:
				return m, m.dashboardView.Load()
			case ViewList:
				return m, m.taskList.LoadTasks()
			case ViewNotifications:
				return m, m.inboxView.Load()
			}

		case key.Matches(msg, m.keys.NewTask):
			if m.currentView == ViewList || m.currentView == ViewDashboard {
				m.previousView = m.currentView
				m.currentView = ViewTaskCreate
				return m, m.loadFormOptions()
			}

		case key.Matches(msg, m.keys.EditTask):
			if m.currentView == ViewList {
				task, ok := m.taskList.SelectedTask()
				if ok && m.user.CanManageTask(task) {
					m.previousView = m.currentView
					m.currentView = ViewTaskEdit
					return m, tea.Sequence(
						m.loadFormOptions(),
						m.startEdit(task.ID),
					)
				}
			}

		case key.Matches(msg, m.keys.Complete):
			if m.currentView == ViewList {
				task, ok := m.taskList.SelectedTask()
				if ok {
					return m, m.toggleComplete(task.ID)
				}
			}

		case key.Matches(msg, m.keys.DeleteTask):
			if m.currentView == ViewList {
				task, ok := m.taskList.SelectedTask()
				if ok && m.user.CanManageTask(task) {
					return m, m.deleteTask(task.ID)
				}
			}

		case msg.String() == "p":
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewProjectList
				return m, m.projectView.Init()
			}

		case msg.String() == "t":
			if m.currentView == ViewList {
				m.previousView = m.currentView
				m.currentView = ViewTagList
				return m, m.tagView.Init()
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// navigable reports whether view-switch keys are active; they are
// suppressed inside forms and text input.
func (m Model) navigable() bool {
	switch m.currentView {
	case ViewTaskCreate, ViewTaskEdit, ViewDetail:
		return false
	}
	return true
}

func (m *Model) stopPoller() {
	if m.poller != nil {
		m.poller.Stop()
	}
}

// handleDetailAction executes an action requested from the detail view.
func (m Model) handleDetailAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case "complete":
		return m, m.toggleComplete(msg.TaskID)

	// Assignee changes go through the same edit form; the form's
	// multi-select is the only assignee editing surface.
	case "edit", "assignees":
		task := m.detailView.Task()
		if task != nil && m.user.CanManageTask(*task) {
			m.previousView = m.currentView
			m.currentView = ViewTaskEdit
			return m, tea.Sequence(
				m.loadFormOptions(),
				m.startEdit(msg.TaskID),
			)
		}

	case "delete":
		task := m.detailView.Task()
		if task != nil && m.user.CanManageTask(*task) {
			m.currentView = ViewList
			return m, m.deleteTask(msg.TaskID)
		}
	}
	return m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewNotifications:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewTaskCreate, ViewTaskEdit:
		m.formView, cmd = m.formView.Update(msg)
	case ViewProjectList:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewTagList:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "TaskHub"
	badge := m.user.Username
	if m.unreadCount > 0 {
		badge = fmt.Sprintf("%s [%d new]", m.user.Username, m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, badge)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewNotifications:
		return m.inboxView.View()
	case ViewTaskCreate, ViewTaskEdit:
		return m.formView.View()
	case ViewProjectList:
		return m.projectView.View()
	case ViewTagList:
		return m.tagView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | c comment | x complete | e edit | d delete | j/k scroll"
	case ViewNotifications:
		return "enter open task | m mark read | M mark all | / unread only | esc back"
	case ViewTaskCreate, ViewTaskEdit:
		return "enter submit | esc cancel"
	case ViewProjectList:
		return "n new | e edit | d delete | esc back"
	case ViewTagList:
		return "n new | d delete | esc back"
	case ViewDashboard:
		return "2 tasks | 3 notifications | n new | r refresh | q quit | ? help"
	default:
		return "q quit | ? help | n new | e edit | x complete | p projects | t tags | / search | tab sort"
	}
}
