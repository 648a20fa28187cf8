package health

import "github.com/go-chi/chi/v5"

// Routes mounts under /health. HEAD is served for load balancer checks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
