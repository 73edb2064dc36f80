package route

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PhotoStatus is the lifecycle state of one route point's photo.
type PhotoStatus string

const (
	PhotoPending    PhotoStatus = "pending"
	PhotoProcessing PhotoStatus = "processing"
	PhotoDone       PhotoStatus = "done"
	PhotoFailed     PhotoStatus = "failed"
)

// dataURLPrefix is the authoritative classifier between an inline
// upload awaiting processing and an already-resolved object URL. A
// caller-supplied URL that happens to start with this literal string
// is treated as inline; the prefix check is intentionally naive.
const dataURLPrefix = "data:"

// Photo is a tagged record describing one image's processing lifecycle.
type Photo struct {
	Original     string      `json:"original"`
	ThumbnailURL *string     `json:"thumbnail_url"`
	Status       PhotoStatus `json:"status"`
}

// IsInline reports whether Original is an unprocessed data-URL rather
// than a resolved object URL.
func (p Photo) IsInline() bool {
	return strings.HasPrefix(p.Original, dataURLPrefix)
}

// UnmarshalJSON accepts both the tagged-record shape and a legacy bare
// string, the latter mapping to {original: <string>, thumbnail_url:
// nil, status: Pending} for backward compatibility with rows written
// before the photo sub-object existed.
func (p *Photo) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Original = s
		p.ThumbnailURL = nil
		p.Status = PhotoPending
		return nil
	}

	type alias Photo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("unmarshal photo: %w", err)
	}
	*p = Photo(a)
	return nil
}

// SegmentMode describes how the segment leading to a point was drawn.
type SegmentMode string

const (
	SegmentAuto   SegmentMode = "auto"
	SegmentManual SegmentMode = "manual"
)

// RoutePoint is one coordinate in a route, with optional name, segment
// mode, and embedded photo.
type RoutePoint struct {
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	Name        string       `json:"name,omitempty"`
	SegmentMode *SegmentMode `json:"segment_mode,omitempty"`
	Photo       *Photo       `json:"photo,omitempty"`
}

// Points is the JSON-column type backing Route.Points; it implements
// sql/driver so sqlx can scan/write it directly as jsonb/json.
type Points []RoutePoint

func (p Points) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Points) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported points scan type %T", src)
	}

	if len(data) == 0 {
		*p = nil
		return nil
	}

	var points []RoutePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("scan points: %w", err)
	}
	*p = points
	return nil
}

// DataURLIndices returns the indices of points whose photo is an
// unresolved inline upload.
func (p Points) DataURLIndices() []int {
	var indices []int
	for i, pt := range p {
		if pt.Photo != nil && pt.Photo.IsInline() {
			indices = append(indices, i)
		}
	}
	return indices
}

// Route is an ordered sequence of geolocated points belonging to one
// user.
type Route struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	Name          string         `db:"name" json:"name"`
	Points        Points         `db:"points" json:"points"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	ShareToken    *string        `db:"share_token" json:"share_token,omitempty"`
	CategoryIDs   pq.StringArray `db:"category_ids" json:"category_ids,omitempty"`
	StartLocation *string        `db:"start_location" json:"start_location,omitempty"`
	EndLocation   *string        `db:"end_location" json:"end_location,omitempty"`
}

// OwnedBy reports whether userID is the route's owner.
func (r *Route) OwnedBy(userID uuid.UUID) bool {
	return r.UserID == userID
}
