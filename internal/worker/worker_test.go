package worker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/trailmark/routes-backend/internal/domain/route"
	"github.com/trailmark/routes-backend/internal/pkg/imaging"
)

type fakeRouteRepo struct {
	rt            *route.Route
	updatedPoints route.Points
	updateCalled  bool
	updateErr     error
}

func (f *fakeRouteRepo) GetByID(ctx context.Context, id uuid.UUID) (*route.Route, error) {
	return f.rt, nil
}

func (f *fakeRouteRepo) UpdatePoints(ctx context.Context, id uuid.UUID, points route.Points) error {
	f.updateCalled = true
	f.updatedPoints = points
	return f.updateErr
}

type fakeStorage struct {
	failKeys map[string]bool
}

func (f *fakeStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if f.failKeys[key] {
		return fmt.Errorf("simulated upload failure for %s", key)
	}
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) { return true, nil }
func (f *fakeStorage) GetURL(key string) string                            { return "https://cdn.test/" + key }
func (f *fakeStorage) EnsureBucket(ctx context.Context) error              { return nil }

func testDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newPoint(dataURL string) route.RoutePoint {
	return route.RoutePoint{
		Lat: 43.2, Lng: 76.9,
		Photo: &route.Photo{Original: dataURL, Status: route.PhotoPending},
	}
}

func newWorker(repo *fakeRouteRepo, store *fakeStorage) *Worker {
	processor := imaging.NewProcessor(imaging.Config{MaxWidth: 1600, Quality: 85, ThumbnailWidth: 320})
	return New(nil, repo, store, processor)
}

func TestProcessIndex_Success(t *testing.T) {
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{newPoint(testDataURL(t))}}
	store := &fakeStorage{failKeys: map[string]bool{}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 0)

	pt := rt.Points[0]
	if pt.Photo.Status != route.PhotoDone {
		t.Fatalf("expected status done, got %s", pt.Photo.Status)
	}
	if pt.Photo.IsInline() {
		t.Fatalf("expected original resolved to object URL, still inline: %s", pt.Photo.Original)
	}
	if pt.Photo.ThumbnailURL == nil || *pt.Photo.ThumbnailURL == "" {
		t.Fatalf("expected thumbnail url set")
	}
}

func TestProcessIndex_DecodeFailureLeavesOriginalUntouched(t *testing.T) {
	original := "data:image/jpeg;base64,not-valid-base64!!!"
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{newPoint(original)}}
	store := &fakeStorage{failKeys: map[string]bool{}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 0)

	pt := rt.Points[0]
	if pt.Photo.Status != route.PhotoFailed {
		t.Fatalf("expected status failed, got %s", pt.Photo.Status)
	}
	if pt.Photo.Original != original {
		t.Fatalf("expected original left as-is, got %s", pt.Photo.Original)
	}
	if pt.Photo.ThumbnailURL != nil {
		t.Fatalf("expected nil thumbnail url")
	}
}

func TestProcessIndex_TranscodeFailureLeavesOriginalUntouched(t *testing.T) {
	original := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{newPoint(original)}}
	store := &fakeStorage{failKeys: map[string]bool{}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 0)

	pt := rt.Points[0]
	if pt.Photo.Status != route.PhotoFailed {
		t.Fatalf("expected status failed, got %s", pt.Photo.Status)
	}
	if pt.Photo.Original != original {
		t.Fatalf("expected original left as-is, got %s", pt.Photo.Original)
	}
}

func TestProcessIndex_ThumbnailUploadFailureKeepsResolvedFullURL(t *testing.T) {
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{newPoint(testDataURL(t))}}
	fullKey := fmt.Sprintf("%s/%s/photo_%d.jpg", rt.UserID, rt.ID, 0)
	thumbKey := fmt.Sprintf("%s/%s/thumb_%d.jpg", rt.UserID, rt.ID, 0)
	store := &fakeStorage{failKeys: map[string]bool{thumbKey: true}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 0)

	pt := rt.Points[0]
	if pt.Photo.Status != route.PhotoFailed {
		t.Fatalf("expected status failed, got %s", pt.Photo.Status)
	}
	if pt.Photo.Original != store.GetURL(fullKey) {
		t.Fatalf("expected original resolved to full url %s, got %s", store.GetURL(fullKey), pt.Photo.Original)
	}
	if pt.Photo.ThumbnailURL != nil {
		t.Fatalf("expected nil thumbnail url after thumb upload failure")
	}
}

func TestProcessIndex_AlreadyResolvedPhotoIsNoOp(t *testing.T) {
	resolved := "https://cdn.test/already/done.jpg"
	pt := route.RoutePoint{Lat: 1, Lng: 2, Photo: &route.Photo{Original: resolved, Status: route.PhotoDone}}
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{pt}}
	store := &fakeStorage{failKeys: map[string]bool{}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 0)

	if rt.Points[0].Photo.Original != resolved {
		t.Fatalf("expected no-op for already resolved photo, got %s", rt.Points[0].Photo.Original)
	}
	if rt.Points[0].Photo.Status != route.PhotoDone {
		t.Fatalf("expected status unchanged")
	}
}

func TestProcessIndex_OutOfBoundsIndexDoesNotPanic(t *testing.T) {
	rt := &route.Route{ID: uuid.New(), UserID: uuid.New(), Points: route.Points{newPoint(testDataURL(t))}}
	store := &fakeStorage{failKeys: map[string]bool{}}
	w := newWorker(&fakeRouteRepo{rt: rt}, store)

	w.processIndex(context.Background(), rt, 5)
}

func TestCompletionPayload_MatchesWireContract(t *testing.T) {
	rt := &route.Route{
		ID:     uuid.New(),
		Points: route.Points{{Lat: 1, Lng: 2, Photo: &route.Photo{Original: "https://cdn.example.com/p.jpg", Status: route.PhotoDone}}},
	}

	data, err := json.Marshal(completionPayload{Type: "photo_update", RouteID: rt.ID, Points: rt.Points})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["type"] != "photo_update" {
		t.Fatalf(`expected type "photo_update", got %v`, decoded["type"])
	}
	if decoded["route_id"] != rt.ID.String() {
		t.Fatalf("expected route_id %s, got %v", rt.ID, decoded["route_id"])
	}
	if _, ok := decoded["points"]; !ok {
		t.Fatal("expected a points field in the completion payload")
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), wantErr: false},
		{name: "no comma", input: "data:image/jpeg;base64", wantErr: true},
		{name: "not base64 flagged", input: "data:image/jpeg;utf8,hello", wantErr: true},
		{name: "invalid base64 payload", input: "data:image/jpeg;base64,!!!not-base64!!!", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeDataURL(tc.input)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
