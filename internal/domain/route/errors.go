package route

import "errors"

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrNotRouteOwner = errors.New("you can only modify your own routes")
	ErrEmptyPoints   = errors.New("route must have at least one point")
	ErrInvalidName   = errors.New("name must be between 1 and 200 characters")
	ErrEnqueueFailed = errors.New("route saved but photo processing could not be scheduled, please retry the update")
)

// ValidationErrors carries field-level validation messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return "validation failed"
}
