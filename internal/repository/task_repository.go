package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, customer_id, name, description, is_active, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CustomerID,
		&t.Name,
		&t.Description,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(userID string, req *models.CreateTaskRequest) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.UserID,
		task.CustomerID,
		task.Name,
		task.Description,
		task.IsActive,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) GetByID(userID, id string) (*models.Task, error) {
	row := r.db.QueryRow(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByCustomer returns the customer's active tasks ordered by name.
func (r *TaskRepository) ListByCustomer(userID, customerID string) ([]*models.Task, error) {
	rows, err := r.db.Query(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND customer_id = ? AND is_active = 1
		ORDER BY name
	`, userID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return tasks, nil
}

// Deactivate soft-deletes a task; existing time entries keep their reference.
func (r *TaskRepository) Deactivate(userID, id string) error {
	result, err := r.db.Exec(`
		UPDATE tasks SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate task: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
