package route

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/middleware"
)

const routeSelectColumns = `
	id, user_id, name, points, created_at, updated_at,
	share_token, category_ids, start_location, end_location
`

// Pagination bounds a ListByUser page. Page is 1-indexed.
type Pagination struct {
	Page  int
	Limit int
}

// Repository defines route data access. The photo worker only ever
// needs GetByID and UpdatePoints, which it declares in its own narrower
// interface (worker.RouteRepository).
type Repository interface {
	Create(ctx context.Context, r *Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*Route, error)
	GetByShareToken(ctx context.Context, token string) (*Route, error)
	Update(ctx context.Context, r *Route) error
	UpdatePoints(ctx context.Context, id uuid.UUID, points Points) error
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]*Route, int, error)
	RouteExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a Postgres-backed route repository.
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rt *Route) error {
	query := `
		INSERT INTO routes (
			id, user_id, name, points, created_at, updated_at,
			share_token, category_ids, start_location, end_location
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.UserID, rt.Name, rt.Points, rt.CreatedAt, rt.UpdatedAt,
		rt.ShareToken, pq.Array(rt.CategoryIDs), rt.StartLocation, rt.EndLocation,
	)
	if err != nil {
		log.Error().
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("route_id", rt.ID.String()).
			Err(err).
			Msg("route insert failed")
		return fmt.Errorf("insert route: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	query := `SELECT ` + routeSelectColumns + ` FROM routes WHERE id = $1`

	var rt Route
	err := r.db.GetContext(ctx, &rt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	return &rt, nil
}

// RouteExists reports whether a route with the given ID exists, for
// callers (bookmarks) that only need a presence check, not the row.
func (r *repository) RouteExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check route exists %s: %w", id, err)
	}
	return exists, nil
}

func (r *repository) GetByShareToken(ctx context.Context, token string) (*Route, error) {
	query := `SELECT ` + routeSelectColumns + ` FROM routes WHERE share_token = $1`

	var rt Route
	err := r.db.GetContext(ctx, &rt, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get route by share token: %w", err)
	}
	return &rt, nil
}

func (r *repository) Update(ctx context.Context, rt *Route) error {
	query := `
		UPDATE routes SET
			name = $2, points = $3, updated_at = $4,
			category_ids = $5, start_location = $6, end_location = $7
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.Name, rt.Points, rt.UpdatedAt,
		pq.Array(rt.CategoryIDs), rt.StartLocation, rt.EndLocation,
	)
	if err != nil {
		return fmt.Errorf("update route %s: %w", rt.ID, err)
	}
	return nil
}

// UpdatePoints performs the worker's blind points rewrite: last-writer-
// wins at the row level, no version check, no merge with concurrent
// edits.
func (r *repository) UpdatePoints(ctx context.Context, id uuid.UUID, points Points) error {
	query := `UPDATE routes SET points = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, points)
	if err != nil {
		return fmt.Errorf("update route points %s: %w", id, err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM routes WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete route %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete route %s: %w", id, err)
	}
	if rows == 0 {
		return ErrRouteNotFound
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]*Route, int, error) {
	countQuery := `SELECT COUNT(*) FROM routes WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count routes for user %s: %w", userID, err)
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := `
		SELECT ` + routeSelectColumns + ` FROM routes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var routes []*Route
	if err := r.db.SelectContext(ctx, &routes, query, userID, pagination.Limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list routes for user %s: %w", userID, err)
	}
	return routes, total, nil
}
