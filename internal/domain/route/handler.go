package route

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trailmark/routes-backend/internal/middleware"
	"github.com/trailmark/routes-backend/internal/pkg/response"
	"github.com/trailmark/routes-backend/internal/pkg/validator"
)

// Handler handles route HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a route handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/v1/routes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	rt, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, rt, err)
		return
	}

	response.Created(w, ResponseFromEntity(rt))
}

// GetByID handles GET /api/v1/routes/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	rt, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		response.NotFound(w, "Route not found")
		return
	}

	response.OK(w, ResponseFromEntity(rt))
}

// Update handles PUT /api/v1/routes/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	var req UpdateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	rt, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		h.writeError(w, rt, err)
		return
	}

	response.OK(w, ResponseFromEntity(rt))
}

// Delete handles DELETE /api/v1/routes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, ErrRouteNotFound) {
			response.NotFound(w, "Route not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// ListMy handles GET /api/v1/routes, paginated via ?page=&limit=.
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	query := r.URL.Query()
	page := 1
	limit := 20
	if p := query.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			page = v
		}
	}
	if l := query.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	routes, total, err := h.service.ListByUser(r.Context(), userID, Pagination{Page: page, Limit: limit})
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*Response, len(routes))
	for i, rt := range routes {
		out[i] = ResponseFromEntity(rt)
	}
	response.WithMeta(w, out, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// Share handles POST /api/v1/routes/{id}/share.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	rt, err := h.service.Share(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, ErrRouteNotFound) {
			response.NotFound(w, "Route not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, ResponseFromEntity(rt))
}

// GetShared handles GET /api/v1/routes/shared/{token}, an unauthenticated
// read-only lookup by share token.
func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	rt, err := h.service.GetByShareToken(r.Context(), token)
	if err != nil {
		response.NotFound(w, "Route not found")
		return
	}
	response.OK(w, ResponseFromEntity(rt))
}

// writeError maps a service error to an HTTP response. Routes carry a
// 202-style success body with a warning when the row was written but
// its photo task failed to enqueue (ErrEnqueueFailed): the client
// should resubmit the same update to retry scheduling.
func (h *Handler) writeError(w http.ResponseWriter, rt *Route, err error) {
	switch {
	case errors.Is(err, ErrEnqueueFailed):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    ResponseFromEntity(rt),
			"warning": err.Error(),
		})
	case errors.Is(err, ErrEmptyPoints), errors.Is(err, ErrInvalidName):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrRouteNotFound):
		response.NotFound(w, "Route not found")
	default:
		response.InternalError(w)
	}
}
