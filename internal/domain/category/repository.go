package category

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists categories.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Postgres-backed category repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new category.
func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	c := &Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	query := `INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns a category by ID, or nil if it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	var c Category
	query := `SELECT * FROM categories WHERE id = $1`
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category, alphabetically.
func (r *Repository) List(ctx context.Context) ([]*Category, error) {
	var out []*Category
	query := `SELECT * FROM categories ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames a category.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE categories SET name = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, name, id)
	return err
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
