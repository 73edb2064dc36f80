package route

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/pkg/queue"
)

// TaskPublisher is the narrow capability the route service needs from
// the work queue transport.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task queue.PhotoProcessTask) error
}

// Service implements route creation/update/read with photo-task
// detection on write.
type Service struct {
	repo  Repository
	queue TaskPublisher
}

// NewService creates a route service bound to a repository and a task
// publisher.
func NewService(repo Repository, q TaskPublisher) *Service {
	return &Service{repo: repo, queue: q}
}

// Create persists a new route and, if any point carries an inline
// data-URL photo, enqueues a processing task for those indices.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRouteRequest) (*Route, error) {
	if len(req.Points) == 0 {
		return nil, ErrEmptyPoints
	}

	now := time.Now()
	rt := &Route{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		Points:        pointsFromInput(req.Points),
		CreatedAt:     now,
		UpdatedAt:     now,
		CategoryIDs:   req.CategoryIDs,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}

	if !s.enqueuePhotoTask(ctx, rt) {
		return rt, ErrEnqueueFailed
	}

	return rt, nil
}

// Update replaces a route's mutable fields. When Points is present it
// replaces the entire array; there is no per-point merge with the
// persisted state.
func (s *Service) Update(ctx context.Context, userID, routeID uuid.UUID, req *UpdateRouteRequest) (*Route, error) {
	rt, err := s.repo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, ErrRouteNotFound
	}
	if !rt.OwnedBy(userID) {
		return nil, ErrRouteNotFound
	}

	if req.Name != nil {
		rt.Name = *req.Name
	}
	if req.Points != nil {
		rt.Points = pointsFromInput(req.Points)
	}
	if req.CategoryIDs != nil {
		rt.CategoryIDs = req.CategoryIDs
	}
	if req.StartLocation != nil {
		rt.StartLocation = req.StartLocation
	}
	if req.EndLocation != nil {
		rt.EndLocation = req.EndLocation
	}
	rt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}

	if !s.enqueuePhotoTask(ctx, rt) {
		return rt, ErrEnqueueFailed
	}

	return rt, nil
}

// enqueuePhotoTask publishes a PhotoProcessTask for every inline photo
// in rt.Points, returning false if publishing failed. Enqueue failure
// does not roll back the already-written row; the caller surfaces
// ErrEnqueueFailed so the client knows to retry the update.
func (s *Service) enqueuePhotoTask(ctx context.Context, rt *Route) bool {
	indices := rt.Points.DataURLIndices()
	if len(indices) == 0 {
		return true
	}

	task := queue.PhotoProcessTask{
		RouteID:      rt.ID,
		UserID:       rt.UserID,
		PointIndices: indices,
	}

	if err := s.queue.PublishTask(ctx, task); err != nil {
		log.Error().
			Err(err).
			Str("route_id", rt.ID.String()).
			Msg("failed to enqueue photo processing task")
		return false
	}
	return true
}

// GetByID returns a route only to its owner; foreign reads are
// reported as not-found to avoid leaking existence.
func (s *Service) GetByID(ctx context.Context, userID, routeID uuid.UUID) (*Route, error) {
	rt, err := s.repo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt == nil || !rt.OwnedBy(userID) {
		return nil, ErrRouteNotFound
	}
	return rt, nil
}

// GetByShareToken returns a route via its opaque share token,
// independent of ownership.
func (s *Service) GetByShareToken(ctx context.Context, token string) (*Route, error) {
	rt, err := s.repo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, ErrRouteNotFound
	}
	return rt, nil
}

// ListByUser returns a page of routes owned by userID, along with the
// total count across all pages.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]*Route, int, error) {
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.Limit < 1 || pagination.Limit > 100 {
		pagination.Limit = 20
	}
	return s.repo.ListByUser(ctx, userID, pagination)
}

// Delete removes a route if userID owns it.
func (s *Service) Delete(ctx context.Context, userID, routeID uuid.UUID) error {
	return s.repo.Delete(ctx, routeID, userID)
}

// Share assigns (or rotates) the route's opaque share token.
func (s *Service) Share(ctx context.Context, userID, routeID uuid.UUID) (*Route, error) {
	rt, err := s.repo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt == nil || !rt.OwnedBy(userID) {
		return nil, ErrRouteNotFound
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, err
	}
	rt.ShareToken = &token
	rt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func generateShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
