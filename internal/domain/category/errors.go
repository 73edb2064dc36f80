package category

import "errors"

var (
	ErrNotFound    = errors.New("category not found")
	ErrInvalidName = errors.New("name must be 1-100 characters")
)
