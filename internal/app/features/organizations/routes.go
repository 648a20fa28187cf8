// internal/app/features/organizations/routes.go
package organizations

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the organization API under /org. requireAdmin guards the
// routes that act on the caller's own organization.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.HandleCreate)
	r.Get("/get", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(requireAdmin)
		pr.Put("/update", h.HandleUpdate)
		pr.Delete("/delete", h.HandleDelete)
	})

	return r
}
