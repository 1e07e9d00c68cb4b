// internal/app/features/uploads/routes.go
package uploads

import "github.com/go-chi/chi/v5"

// Routes returns the upload subrouter (POST /).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleUpload)
	return r
}

// FileRoutes returns the subrouter serving stored files (GET /*).
func FileRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.ServeFile)
	return r
}
