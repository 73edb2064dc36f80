package route

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BookmarkHandler is the narrow bookmark capability mounted onto a
// route's own URL namespace (/{id}/bookmark), kept as an interface so
// this package never imports the bookmark domain.
type BookmarkHandler interface {
	Toggle(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

// Routes returns the route domain's chi router. authMiddleware gates
// every endpoint except the public share-token lookup. bookmarks may
// be nil, in which case the /{id}/bookmark endpoints are omitted.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler, bookmarks BookmarkHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/shared/{token}", h.GetShared)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.ListMy)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/share", h.Share)

		if bookmarks != nil {
			r.Post("/{id}/bookmark", bookmarks.Toggle)
			r.Get("/{id}/bookmark", bookmarks.Status)
		}
	})

	return r
}
