package bookmark

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a user's saved reference to a route.
type Bookmark struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RouteID   uuid.UUID `json:"route_id" db:"route_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
