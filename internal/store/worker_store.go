package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskhub/internal/model"
)

// CreateWorker inserts a new worker. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error) {
	if strings.TrimSpace(w.Username) == "" {
		return nil, fmt.Errorf("worker username must not be empty")
	}
	if strings.TrimSpace(w.Email) == "" {
		return nil, fmt.Errorf("worker email must not be empty")
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	w.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (
			id, username, first_name, last_name, email,
			position_id, is_staff, is_superuser, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Username, w.FirstName, w.LastName, w.Email,
		w.Position, boolToInt(w.IsStaff), boolToInt(w.IsSuper), w.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating worker: %w", err)
	}
	return &w, nil
}

// UpdateWorker updates a worker's profile fields.
func (s *SQLiteStore) UpdateWorker(ctx context.Context, w model.Worker) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE workers SET
			first_name = ?, last_name = ?, email = ?,
			position_id = ?, is_staff = ?, is_superuser = ?
		WHERE id = ?`,
		w.FirstName, w.LastName, w.Email,
		w.Position, boolToInt(w.IsStaff), boolToInt(w.IsSuper),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating worker %s: %w", w.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("worker %s: %w", w.ID, ErrNotFound)
	}
	return nil
}

// GetWorkerByID retrieves a single worker by ID.
func (s *SQLiteStore) GetWorkerByID(ctx context.Context, id string) (*model.Worker, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM workers WHERE id = ?", id)
	w, err := scanWorkerRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("worker %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting worker %s: %w", id, err)
	}
	return &w, nil
}

// GetWorkerByUsername retrieves a single worker by username.
func (s *SQLiteStore) GetWorkerByUsername(ctx context.Context, username string) (*model.Worker, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM workers WHERE username = ?", username)
	w, err := scanWorkerRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("worker %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("getting worker %q: %w", username, err)
	}
	return &w, nil
}

// GetWorkers retrieves all workers ordered by last then first name.
func (s *SQLiteStore) GetWorkers(ctx context.Context) ([]model.Worker, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM workers ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("querying workers: %w", err)
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

// CreatePosition inserts a new position.
func (s *SQLiteStore) CreatePosition(ctx context.Context, p model.Position) (*model.Position, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("position name must not be empty")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO positions (id, name) VALUES (?, ?)", p.ID, p.Name)
	if err != nil {
		return nil, fmt.Errorf("creating position: %w", err)
	}
	return &p, nil
}

// DeletePosition removes a position. Workers holding it fall back to NULL.
func (s *SQLiteStore) DeletePosition(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM positions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting position %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("position %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetPositions retrieves all positions ordered by name.
func (s *SQLiteStore) GetPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM positions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying positions: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning position row: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// scanWorker scans a worker row from a sqlx.Rows result set.
func scanWorker(rows *sqlx.Rows) (model.Worker, error) {
	var (
		w        model.Worker
		staffInt int
		superInt int
	)
	err := rows.Scan(
		&w.ID, &w.Username, &w.FirstName, &w.LastName, &w.Email,
		&w.Position, &staffInt, &superInt, &w.CreatedAt,
	)
	if err != nil {
		return model.Worker{}, fmt.Errorf("scanning worker row: %w", err)
	}
	w.IsStaff = staffInt != 0
	w.IsSuper = superInt != 0
	return w, nil
}

// scanWorkerRow scans a single worker row from a sqlx.Row.
func scanWorkerRow(row *sqlx.Row) (model.Worker, error) {
	var (
		w        model.Worker
		staffInt int
		superInt int
	)
	err := row.Scan(
		&w.ID, &w.Username, &w.FirstName, &w.LastName, &w.Email,
		&w.Position, &staffInt, &superInt, &w.CreatedAt,
	)
	if err != nil {
		return model.Worker{}, err
	}
	w.IsStaff = staffInt != 0
	w.IsSuper = superInt != 0
	return w, nil
}
