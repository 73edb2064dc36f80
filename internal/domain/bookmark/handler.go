package bookmark

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailmark/routes-backend/internal/middleware"
	"github.com/trailmark/routes-backend/internal/pkg/response"
)

// Handler handles route bookmark HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a bookmark handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Toggle handles POST /api/v1/routes/{id}/bookmark. One call both adds
// and removes the bookmark, mirroring the client's expected "tap to
// toggle" interaction.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	routeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	bookmarked, err := h.service.Toggle(r.Context(), routeID, userID)
	if err != nil {
		if errors.Is(err, ErrRouteNotFound) {
			response.NotFound(w, "Route not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"bookmarked": bookmarked})
}

// Status handles GET /api/v1/routes/{id}/bookmark.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	routeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	bookmarked, err := h.service.Status(r.Context(), routeID, userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]bool{"bookmarked": bookmarked})
}

// List handles GET /api/v1/bookmarks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	bookmarks, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, bookmarks)
}

// Routes returns the bookmark domain's chi router, to be mounted at
// /api/v1/bookmarks. The per-route toggle/status endpoints are mounted
// separately under /api/v1/routes/{id}/bookmark by the caller, since
// they share the route resource's URL namespace.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	return r
}
