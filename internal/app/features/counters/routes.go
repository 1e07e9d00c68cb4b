// internal/app/features/counters/routes.go
package counters

import "github.com/go-chi/chi/v5"

// Routes returns the counters subrouter. All routes require an
// administrator; the caller applies the role check.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCounters)
	r.Put("/", h.HandleSetCounters)
	return r
}
