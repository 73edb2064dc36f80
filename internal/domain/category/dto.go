package category

// CreateRequest is the payload for POST /categories.
type CreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateRequest is the payload for PUT /categories/{id}.
type UpdateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
