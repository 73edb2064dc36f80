package category

import (
	"context"

	"github.com/google/uuid"
)

// categoryRepository is the narrow persistence capability the service
// needs, satisfied by *Repository; narrowed so tests can fake it.
type categoryRepository interface {
	Create(ctx context.Context, name string) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements category CRUD. Kept intentionally bare: this
// domain has no business rules beyond name length, enforced by the
// request validator ahead of the handler.
type Service struct {
	repo categoryRepository
}

// NewService creates a category service.
func NewService(repo categoryRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name string) (*Category, error) {
	return s.repo.Create(ctx, name)
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.repo.Update(ctx, id, name)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
