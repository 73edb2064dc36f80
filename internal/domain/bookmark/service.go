package bookmark

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrRouteNotFound = errors.New("route not found")

// routeExister is the narrow route capability the bookmark service
// needs: confirm the route exists before bookmarking it, without
// importing the route package's entity type.
type routeExister interface {
	RouteExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// bookmarkRepository is the narrow persistence capability the service
// needs, satisfied by *Repository; narrowed so tests can fake it.
type bookmarkRepository interface {
	Create(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error)
	DeleteByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) error
	FindByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Bookmark, error)
}

// Service implements the toggle-bookmark workflow: one call both adds
// and removes, depending on whether the pair already exists.
type Service struct {
	repo   bookmarkRepository
	routes routeExister
}

// NewService creates a bookmark service.
func NewService(repo bookmarkRepository, routes routeExister) *Service {
	return &Service{repo: repo, routes: routes}
}

// Toggle adds a bookmark if one does not exist, or removes it if it
// does. Returns the resulting bookmarked state.
func (s *Service) Toggle(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	exists, err := s.routes.RouteExists(ctx, routeID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrRouteNotFound
	}

	existing, err := s.repo.FindByRouteAndUser(ctx, routeID, userID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if err := s.repo.DeleteByRouteAndUser(ctx, routeID, userID); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.repo.Create(ctx, routeID, userID); err != nil {
		return false, err
	}
	return true, nil
}

// Status reports whether userID has bookmarked routeID.
func (s *Service) Status(ctx context.Context, routeID, userID uuid.UUID) (bool, error) {
	existing, err := s.repo.FindByRouteAndUser(ctx, routeID, userID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

// List returns a user's bookmarks.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Bookmark, error) {
	return s.repo.ListByUser(ctx, userID)
}
