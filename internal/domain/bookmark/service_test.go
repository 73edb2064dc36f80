package bookmark

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeBookmarkRepo struct {
	byRouteUser map[[2]uuid.UUID]*Bookmark
	createCalls int
	deleteCalls int
}

func newFakeBookmarkRepo() *fakeBookmarkRepo {
	return &fakeBookmarkRepo{byRouteUser: make(map[[2]uuid.UUID]*Bookmark)}
}

func (f *fakeBookmarkRepo) Create(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error) {
	f.createCalls++
	b := &Bookmark{ID: uuid.New(), RouteID: routeID, UserID: userID}
	f.byRouteUser[[2]uuid.UUID{routeID, userID}] = b
	return b, nil
}

func (f *fakeBookmarkRepo) DeleteByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) error {
	f.deleteCalls++
	delete(f.byRouteUser, [2]uuid.UUID{routeID, userID})
	return nil
}

func (f *fakeBookmarkRepo) FindByRouteAndUser(ctx context.Context, routeID, userID uuid.UUID) (*Bookmark, error) {
	return f.byRouteUser[[2]uuid.UUID{routeID, userID}], nil
}

func (f *fakeBookmarkRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Bookmark, error) {
	var out []*Bookmark
	for _, b := range f.byRouteUser {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeRouteExister struct {
	exists bool
}

func (f *fakeRouteExister) RouteExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.exists, nil
}

func TestToggle_AddsWhenAbsent(t *testing.T) {
	repo := newFakeBookmarkRepo()
	svc := NewService(repo, &fakeRouteExister{exists: true})
	routeID, userID := uuid.New(), uuid.New()

	bookmarked, err := svc.Toggle(context.Background(), routeID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bookmarked {
		t.Fatal("expected bookmarked=true on first toggle")
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", repo.createCalls)
	}
}

func TestToggle_RemovesWhenPresent(t *testing.T) {
	repo := newFakeBookmarkRepo()
	svc := NewService(repo, &fakeRouteExister{exists: true})
	routeID, userID := uuid.New(), uuid.New()

	if _, err := svc.Toggle(context.Background(), routeID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookmarked, err := svc.Toggle(context.Background(), routeID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookmarked {
		t.Fatal("expected bookmarked=false on second toggle")
	}
	if repo.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", repo.deleteCalls)
	}
}

func TestToggle_RouteNotFound(t *testing.T) {
	repo := newFakeBookmarkRepo()
	svc := NewService(repo, &fakeRouteExister{exists: false})

	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New())
	if err != ErrRouteNotFound {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestStatus_ReflectsExistingBookmark(t *testing.T) {
	repo := newFakeBookmarkRepo()
	svc := NewService(repo, &fakeRouteExister{exists: true})
	routeID, userID := uuid.New(), uuid.New()

	status, _ := svc.Status(context.Background(), routeID, userID)
	if status {
		t.Fatal("expected false before any toggle")
	}

	svc.Toggle(context.Background(), routeID, userID)

	status, _ = svc.Status(context.Background(), routeID, userID)
	if !status {
		t.Fatal("expected true after toggle")
	}
}
