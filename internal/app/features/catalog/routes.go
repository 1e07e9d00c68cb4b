// internal/app/features/catalog/routes.go
package catalog

import (
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Segment is the URL segment a kind is mounted under in the admin API.
func Segment(k models.Kind) string {
	switch k {
	case models.KindPaper:
		return "papers"
	case models.KindResource:
		return "resources"
	}
	return k.Collection()
}

// Routes returns a subrouter with the CRUD endpoints of one kind. The
// caller mounts it under an administrator-only group.
func Routes[T any, PT interface {
	*T
	models.Entity
}](h *Handler[T, PT]) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
