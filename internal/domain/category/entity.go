package category

import (
	"time"

	"github.com/google/uuid"
)

// Category tags routes into a named group (e.g. "hiking", "cycling").
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
