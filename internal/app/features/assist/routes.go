// internal/app/features/assist/routes.go
package assist

import "github.com/go-chi/chi/v5"

// Routes returns the AI helper subrouter. The caller mounts it under an
// administrator-only group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/description", h.HandleDescription)
	r.Post("/snippets", h.HandleSnippets)
	r.Post("/journal-metrics", h.HandleJournalMetrics)
	return r
}
