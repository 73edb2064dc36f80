package bookmark

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists route bookmarks.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Postgres-backed bookmark repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a bookmark. It is a plain insert with no conflict
// handling; uniqueness of the route/user pair is enforced at the service
// layer, which checks FindByRouteAndUser before calling it.
func (r *Repository) Create(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error) {
	b := &Bookmark{
		ID:        uuid.New(),
		RouteID:   routeID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO route_bookmarks (id, route_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, b.ID, b.RouteID, b.UserID, b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteByRouteAndUser removes the bookmark pairing a route and a user.
func (r *Repository) DeleteByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) error {
	query := `DELETE FROM route_bookmarks WHERE route_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, routeID, userID)
	return err
}

// FindByRouteAndUser returns the bookmark for a route/user pair, or nil
// if the route is not bookmarked by that user.
func (r *Repository) FindByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error) {
	var b Bookmark
	query := `SELECT * FROM route_bookmarks WHERE route_id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &b, query, routeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns every bookmark a user holds, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Bookmark, error) {
	var out []*Bookmark
	query := `SELECT * FROM route_bookmarks WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, err
	}
	return out, nil
}
