package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleberrangel/teamsync-api/internal/model"
)

// Task represents a TeamSync task row
type Task struct {
	ID           int            `json:"id" db:"id"`
	Title        string         `json:"title" db:"title"`
	Description  sql.NullString `json:"description" db:"description"`
	Status       string         `json:"status" db:"status"`
	Priority     sql.NullString `json:"priority" db:"priority"`
	TimeEstimate sql.NullString `json:"time_estimate" db:"time_estimate"`
	ProjectID    int            `json:"project_id" db:"project_id"`
	ParentTaskID sql.NullInt64  `json:"parent_task_id" db:"parent_task_id"`
	AssignedTo   sql.NullInt64  `json:"assigned_to" db:"assigned_to"`
}

// AsExample converte a task em snapshot para o few-shot do prompt
func (t *Task) AsExample() model.ExampleTask {
	desc := "No description"
	if t.Description.Valid && t.Description.String != "" {
		desc = t.Description.String
	}
	return model.ExampleTask{
		Title:        t.Title,
		Description:  desc,
		Priority:     t.Priority.String,
		TimeEstimate: t.TimeEstimate.String,
	}
}

// TaskRepository handles task data operations
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, time_estimate, project_id, parent_task_id, assigned_to`

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.TimeEstimate,
		&t.ProjectID,
		&t.ParentTaskID,
		&t.AssignedTo,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a task by id within a project
func (r *TaskRepository) GetByID(ctx context.Context, id, projectID int) (*Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND project_id = $2
	`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, projectID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("buscar task %d: %w", id, err)
	}
	return t, nil
}

// ListSiblings retrieves tasks sharing the same parent within a project
func (r *TaskRepository) ListSiblings(ctx context.Context, parentTaskID, projectID, limit int) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE parent_task_id = $1 AND project_id = $2
		ORDER BY id
		LIMIT $3
	`

	return r.queryTasks(ctx, query, parentTaskID, projectID, limit)
}

// ListExamples retrieves tasks usable as few-shot examples: both priority
// and time_estimate must be set
func (r *TaskRepository) ListExamples(ctx context.Context, projectID, limit int) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE project_id = $1
		  AND priority IS NOT NULL
		  AND time_estimate IS NOT NULL
		ORDER BY id
		LIMIT $2
	`

	return r.queryTasks(ctx, query, projectID, limit)
}

// ListByAssignee retrieves the open tasks assigned to a user
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID, limit int) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE assigned_to = $1
		  AND status NOT IN ('completed')
		ORDER BY id
		LIMIT $2
	`

	return r.queryTasks(ctx, query, userID, limit)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}

	return tasks, rows.Err()
}
