// internal/app/features/public/routes.go
package public

import "github.com/go-chi/chi/v5"

// MountRoutes adds robots.txt and one GET route per page to r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/robots.txt", h.ServeRobots)
	for _, p := range h.Pages {
		r.Get(p.Path, h.ServePage(p))
	}
}
