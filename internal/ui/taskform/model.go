package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"taskhub/internal/model"
	"taskhub/internal/theme"
)

// TaskCreatedMsg is dispatched when a new task is submitted via the form.
type TaskCreatedMsg struct {
	Task        model.Task
	AssigneeIDs []string
	TagIDs      []string
}

// TaskUpdatedMsg is dispatched when an existing task is updated via the form.
type TaskUpdatedMsg struct {
	Task        model.Task
	AssigneeIDs []string
	TagIDs      []string
}

// TaskFormCancelMsg is dispatched when the user cancels the form.
type TaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	priority    string
	deadline    string
	completed   bool
	taskTypeID  string
	projectID   string
	assigneeIDs []string
	tagIDs      []string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	editMode  bool
	editID    string
	taskTypes []model.TaskType
	projects  []model.Project
	workers   []model.Worker
	tags      []model.Tag
	width     int
	height    int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetOptions sets the selectable task types, projects, workers, and tags.
func (m *Model) SetOptions(
	taskTypes []model.TaskType,
	projects []model.Project,
	workers []model.Worker,
	tags []model.Tag,
) {
	m.taskTypes = taskTypes
	m.projects = projects
	m.workers = workers
	m.tags = tags
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.fb.name = ""
	m.fb.description = ""
	m.fb.priority = model.PriorityMedium
	m.fb.deadline = ""
	m.fb.completed = false
	m.fb.taskTypeID = ""
	m.fb.projectID = ""
	m.fb.assigneeIDs = nil
	m.fb.tagIDs = nil
	m.form = m.buildForm(validateNewDeadline)
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task. Deadline
// validation is relaxed so tasks whose deadline has already passed stay
// editable.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	m.fb.name = task.Name
	m.fb.description = task.Description
	m.fb.priority = task.Priority
	m.fb.deadline = task.Deadline.Format("2006-01-02")
	m.fb.completed = task.IsCompleted
	if task.TaskTypeID != nil {
		m.fb.taskTypeID = *task.TaskTypeID
	} else {
		m.fb.taskTypeID = ""
	}
	if task.ProjectID != nil {
		m.fb.projectID = *task.ProjectID
	} else {
		m.fb.projectID = ""
	}
	m.fb.assigneeIDs = nil
	for _, w := range task.Assignees {
		m.fb.assigneeIDs = append(m.fb.assigneeIDs, w.ID)
	}
	m.fb.tagIDs = nil
	for _, t := range task.Tags {
		m.fb.tagIDs = append(m.fb.tagIDs, t.ID)
	}
	m.form = m.buildForm(validateDate)
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm(deadlineValidator func(string) error) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("What needs to be done?").
			Value(&m.fb.name).
			Validate(validateRequired("Name")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[string]().
			Title("Priority").
			Options(
				huh.NewOption("P1 - Urgent", model.PriorityUrgent),
				huh.NewOption("P2 - High", model.PriorityHigh),
				huh.NewOption("P3 - Medium", model.PriorityMedium),
				huh.NewOption("P4 - Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Deadline").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.deadline).
			Validate(deadlineValidator),
	}

	if typeField := m.taskTypeField(); typeField != nil {
		fields = append(fields, typeField)
	}
	fields = append(fields, m.projectField())
	if assigneeField := m.assigneeField(); assigneeField != nil {
		fields = append(fields, assigneeField)
	}
	if tagField := m.tagField(); tagField != nil {
		fields = append(fields, tagField)
	}
	if m.editMode {
		fields = append(fields,
			huh.NewSelect[bool]().
				Title("Status").
				Options(
					huh.NewOption("Open", false),
					huh.NewOption("Completed", true),
				).
				Value(&m.fb.completed),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) taskTypeField() huh.Field {
	if len(m.taskTypes) == 0 {
		return nil
	}
	opts := []huh.Option[string]{
		huh.NewOption("None", ""),
	}
	for _, tt := range m.taskTypes {
		opts = append(opts, huh.NewOption(tt.Name, tt.ID))
	}
	return huh.NewSelect[string]().
		Title("Type").
		Options(opts...).
		Value(&m.fb.taskTypeID)
}

func (m *Model) projectField() huh.Field {
	opts := []huh.Option[string]{
		huh.NewOption("None", ""),
	}
	for _, p := range m.projects {
		opts = append(opts, huh.NewOption(p.Name, p.ID))
	}
	return huh.NewSelect[string]().
		Title("Project").
		Options(opts...).
		Value(&m.fb.projectID)
}

func (m *Model) assigneeField() huh.Field {
	if len(m.workers) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.workers))
	for i, w := range m.workers {
		opts[i] = huh.NewOption(w.FullName(), w.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assigneeIDs)
}

func (m *Model) tagField() huh.Field {
	if len(m.tags) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.tags))
	for i, t := range m.tags {
		opts[i] = huh.NewOption(t.Name, t.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Tags").
		Options(opts...).
		Value(&m.fb.tagIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	task := model.Task{
		Name:        m.fb.name,
		Description: m.fb.description,
		Priority:    m.fb.priority,
		IsCompleted: m.fb.completed,
	}

	if m.fb.taskTypeID != "" {
		task.TaskTypeID = &m.fb.taskTypeID
	}
	if m.fb.projectID != "" {
		task.ProjectID = &m.fb.projectID
	}
	if t, err := time.Parse("2006-01-02", m.fb.deadline); err == nil {
		task.Deadline = t
	}

	assigneeIDs := m.fb.assigneeIDs
	tagIDs := m.fb.tagIDs

	if m.editMode {
		task.ID = m.editID
		return func() tea.Msg {
			return TaskUpdatedMsg{Task: task, AssigneeIDs: assigneeIDs, TagIDs: tagIDs}
		}
	}
	return func() tea.Msg {
		return TaskCreatedMsg{Task: task, AssigneeIDs: assigneeIDs, TagIDs: tagIDs}
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateNewDeadline(s string) error {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	if err := model.ValidateDeadline(t, time.Now()); err != nil {
		return err
	}
	return nil
}
