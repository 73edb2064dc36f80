package category

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeCategoryRepo struct {
	byID map[uuid.UUID]*Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[uuid.UUID]*Category)}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, name string) (*Category, error) {
	c := &Category{ID: uuid.New(), Name: name}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return f.byID[id], nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*Category, error) {
	var out []*Category
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, id uuid.UUID, name string) error {
	f.byID[id].Name = name
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newFakeCategoryRepo())

	err := svc.Update(context.Background(), uuid.New(), "renamed")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewService(repo)
	c, _ := svc.Create(context.Background(), "hiking")

	if err := svc.Update(context.Background(), c.ID, "trekking"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byID[c.ID].Name != "trekking" {
		t.Fatalf("expected name updated, got %q", repo.byID[c.ID].Name)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(newFakeCategoryRepo())

	err := svc.Delete(context.Background(), uuid.New())
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewService(repo)
	c, _ := svc.Create(context.Background(), "cycling")

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.byID[c.ID]; ok {
		t.Fatal("expected category removed")
	}
}
