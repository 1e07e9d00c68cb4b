// internal/app/features/registrations/routes.go
package registrations

import "github.com/go-chi/chi/v5"

// Routes returns the administrator registration subrouter. The caller
// mounts it under an administrator-only group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Post("/{id}/approve", h.HandleApprove)
	r.Post("/{id}/reject", h.HandleReject)
	r.Put("/{id}/status", h.HandleStatus)
	return r
}
