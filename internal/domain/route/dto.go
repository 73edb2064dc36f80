package route

import "github.com/google/uuid"

// PointInput is the request-side shape for one route point.
type PointInput struct {
	Lat         float64      `json:"lat" validate:"latitude"`
	Lng         float64      `json:"lng" validate:"longitude"`
	Name        string       `json:"name,omitempty"`
	SegmentMode *SegmentMode `json:"segment_mode,omitempty"`
	Photo       *Photo       `json:"photo,omitempty"`
}

// CreateRouteRequest is the payload for POST /routes.
type CreateRouteRequest struct {
	Name          string       `json:"name" validate:"required,min=1,max=200"`
	Points        []PointInput `json:"points" validate:"required,min=1,dive"`
	CategoryIDs   []string     `json:"category_ids,omitempty"`
	StartLocation *string      `json:"start_location,omitempty"`
	EndLocation   *string      `json:"end_location,omitempty"`
}

// UpdateRouteRequest is the payload for PUT /routes/{id}. Points, when
// present, replace the entire array (no partial point merge).
type UpdateRouteRequest struct {
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Points        []PointInput `json:"points,omitempty" validate:"omitempty,dive"`
	CategoryIDs   []string     `json:"category_ids,omitempty"`
	StartLocation *string      `json:"start_location,omitempty"`
	EndLocation   *string      `json:"end_location,omitempty"`
}

func pointsFromInput(input []PointInput) Points {
	points := make(Points, len(input))
	for i, in := range input {
		photo := in.Photo
		if photo != nil && photo.Status == "" {
			photo.Status = PhotoPending
		}
		points[i] = RoutePoint{
			Lat:         in.Lat,
			Lng:         in.Lng,
			Name:        in.Name,
			SegmentMode: in.SegmentMode,
			Photo:       photo,
		}
	}
	return points
}

// Response is the wire shape of a route, identical to the persisted
// entity; kept as a distinct type so storage concerns (db tags) never
// leak into serialization decisions.
type Response struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Points        []RoutePoint `json:"points"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
	ShareToken    *string    `json:"share_token,omitempty"`
	CategoryIDs   []string   `json:"category_ids,omitempty"`
	StartLocation *string    `json:"start_location,omitempty"`
	EndLocation   *string    `json:"end_location,omitempty"`
}

// ResponseFromEntity converts a persisted Route into its wire shape.
func ResponseFromEntity(r *Route) *Response {
	return &Response{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Points:        []RoutePoint(r.Points),
		CreatedAt:     r.CreatedAt.Format(timeLayout),
		UpdatedAt:     r.UpdatedAt.Format(timeLayout),
		ShareToken:    r.ShareToken,
		CategoryIDs:   []string(r.CategoryIDs),
		StartLocation: r.StartLocation,
		EndLocation:   r.EndLocation,
	}
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"
