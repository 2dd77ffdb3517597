package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

// CreateProject inserts a new project.
func (s *SQLiteStore) CreateProject(ctx context.Context, p model.Project) (*model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		p.ID, p.Name, p.Description, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &p, nil
}

// UpdateProject updates a project's name and description.
func (s *SQLiteStore) UpdateProject(ctx context.Context, p model.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name must not be empty")
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ? WHERE id = ?",
		p.Name, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", p.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project. Cascades to its teams and tasks.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetProjectByID retrieves a single project by ID.
func (s *SQLiteStore) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRowxContext(ctx,
		"SELECT * FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return &p, nil
}

// GetProjects retrieves all projects ordered by name.
func (s *SQLiteStore) GetProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateTeam inserts a new team.
func (s *SQLiteStore) CreateTeam(ctx context.Context, t model.Team) (*model.Team, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("team name must not be empty")
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO teams (id, name, project_id) VALUES (?, ?, ?)",
		t.ID, t.Name, t.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating team: %w", err)
	}
	return &t, nil
}

// DeleteTeam removes a team. Cascades to its memberships.
func (s *SQLiteStore) DeleteTeam(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting team %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTeamByID retrieves a single team with its members.
func (s *SQLiteStore) GetTeamByID(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	err := s.db.QueryRowxContext(ctx,
		"SELECT * FROM teams WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.ProjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting team %s: %w", id, err)
	}

	members, err := s.getTeamMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return &t, nil
}

// GetTeams retrieves all teams with their members, ordered by name.
func (s *SQLiteStore) GetTeams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM teams ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ProjectID); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range teams {
		members, err := s.getTeamMembers(ctx, teams[i].ID)
		if err != nil {
			return nil, err
		}
		teams[i].Members = members
	}
	return teams, nil
}

// AddTeamMember adds a worker to a team. Adding an existing member is a
// no-op.
func (s *SQLiteStore) AddTeamMember(ctx context.Context, teamID, workerID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO team_members (team_id, worker_id) VALUES (?, ?)",
		teamID, workerID)
	if err != nil {
		return fmt.Errorf("adding worker %s to team %s: %w", workerID, teamID, err)
	}
	return nil
}

// RemoveTeamMember removes a worker from a team.
func (s *SQLiteStore) RemoveTeamMember(ctx context.Context, teamID, workerID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM team_members WHERE team_id = ? AND worker_id = ?",
		teamID, workerID)
	if err != nil {
		return fmt.Errorf("removing worker %s from team %s: %w", workerID, teamID, err)
	}
	return nil
}

// SetTeamProject attaches a team to a project, or detaches it when
// projectID is nil.
func (s *SQLiteStore) SetTeamProject(ctx context.Context, teamID string, projectID *string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE teams SET project_id = ? WHERE id = ?", projectID, teamID)
	if err != nil {
		return fmt.Errorf("setting project for team %s: %w", teamID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	return nil
}

// getTeamMembers loads the workers belonging to a team.
func (s *SQLiteStore) getTeamMembers(ctx context.Context, teamID string) ([]model.Worker, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT w.* FROM workers w
		INNER JOIN team_members tm ON w.id = tm.worker_id
		WHERE tm.team_id = ?
		ORDER BY w.last_name, w.first_name`, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying members for team %s: %w", teamID, err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}
