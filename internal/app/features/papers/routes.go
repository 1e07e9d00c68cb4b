// internal/app/features/papers/routes.go
package papers

import "github.com/go-chi/chi/v5"

// MountRoutes adds POST /import to r, which is expected to be the
// administrator-only papers router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/import", h.HandleImport)
}
