package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/model"
)

// Project represents a TeamSync project
type Project struct {
	ID          int            `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description sql.NullString `json:"description" db:"description"`
	CreatedBy   sql.NullInt64  `json:"created_by" db:"created_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// DescriptionOrDefault retorna a descrição ou um texto padrão para o prompt
func (p *Project) DescriptionOrDefault() string {
	if p.Description.Valid && p.Description.String != "" {
		return p.Description.String
	}
	return "No description available"
}

// ProjectRepository handles project data operations
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID retrieves a project by id
func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*Project, error) {
	query := `
		SELECT id, title, description, created_by, created_at
		FROM projects
		WHERE id = $1
	`

	var p Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.CreatedBy,
		&p.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("buscar projeto %d: %w", id, err)
	}

	return &p, nil
}
