package category

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailmark/routes-backend/internal/pkg/response"
	"github.com/trailmark/routes-backend/internal/pkg/validator"
)

// Handler handles category HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a category handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/categories. Unauthenticated: categories are
// reference data, not per-user state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, categories)
}

// Create handles POST /api/v1/categories.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, c)
}

// Update handles PUT /api/v1/categories/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.Update(r.Context(), id, req.Name); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Category not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/v1/categories/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Category not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// Routes returns the category domain's chi router. List is public;
// mutation endpoints require authentication only, since this service
// has no admin-role distinction.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}
