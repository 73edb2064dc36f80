package route

import (
	"encoding/json"
	"testing"
)

func TestPhoto_IsInline(t *testing.T) {
	cases := []struct {
		original string
		inline   bool
	}{
		{"data:image/jpeg;base64,abcd", true},
		{"https://cdn.example.com/photo.jpg", false},
		{"https://cdn.example.com/data:not-a-real-prefix", false},
	}
	for _, c := range cases {
		p := Photo{Original: c.original}
		if got := p.IsInline(); got != c.inline {
			t.Errorf("IsInline(%q) = %v, want %v", c.original, got, c.inline)
		}
	}
}

func TestPhoto_UnmarshalJSON_LegacyBareString(t *testing.T) {
	var p Photo
	if err := json.Unmarshal([]byte(`"https://cdn.example.com/legacy.jpg"`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Original != "https://cdn.example.com/legacy.jpg" {
		t.Errorf("unexpected original: %q", p.Original)
	}
	if p.ThumbnailURL != nil {
		t.Error("expected nil thumbnail_url for legacy string compat")
	}
	if p.Status != PhotoPending {
		t.Errorf("expected pending status, got %q", p.Status)
	}
}

func TestPhoto_UnmarshalJSON_TaggedRecord(t *testing.T) {
	var p Photo
	raw := `{"original":"https://cdn.example.com/full.jpg","thumbnail_url":"https://cdn.example.com/thumb.jpg","status":"done"}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != PhotoDone || p.ThumbnailURL == nil || *p.ThumbnailURL != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("unexpected photo: %+v", p)
	}
}

func TestRoutePoint_EmbeddedLegacyPhoto(t *testing.T) {
	var pt RoutePoint
	raw := `{"lat":1.5,"lng":2.5,"photo":"https://cdn.example.com/old.jpg"}`
	if err := json.Unmarshal([]byte(raw), &pt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt.Photo == nil || pt.Photo.Original != "https://cdn.example.com/old.jpg" {
		t.Fatalf("expected legacy photo to decode, got %+v", pt.Photo)
	}
	if pt.Photo.Status != PhotoPending {
		t.Errorf("expected pending status, got %q", pt.Photo.Status)
	}
}

func TestPoints_DataURLIndices(t *testing.T) {
	points := Points{
		{Lat: 0, Lng: 0, Photo: &Photo{Original: "data:image/png;base64,xx"}},
		{Lat: 1, Lng: 1, Photo: nil},
		{Lat: 2, Lng: 2, Photo: &Photo{Original: "https://cdn.example.com/done.jpg", Status: PhotoDone}},
		{Lat: 3, Lng: 3, Photo: &Photo{Original: "data:image/png;base64,yy"}},
	}

	got := points.DataURLIndices()
	if len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Fatalf("unexpected indices: %v", got)
	}
}

func TestPoints_ScanRoundTrip(t *testing.T) {
	points := Points{{Lat: 10, Lng: 20, Name: "trailhead"}}
	data, err := points.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var scanned Points
	if err := scanned.Scan(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scanned) != 1 || scanned[0].Name != "trailhead" {
		t.Fatalf("unexpected scan result: %+v", scanned)
	}
}

func TestPoints_ScanNil(t *testing.T) {
	var p Points
	if err := p.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil points, got %+v", p)
	}
}
