// internal/app/features/adminlogin/routes.go
package adminlogin

import "github.com/go-chi/chi/v5"

// Routes returns the admin sign-in subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin)
	return r
}
