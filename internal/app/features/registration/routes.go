// internal/app/features/registration/routes.go
package registration

import (
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes adds the applicant and member endpoints to r:
//
//	POST /registrations     submit an application (public)
//	POST /member/login      sign in with an approved registration (public)
//	GET  /member/profile    the signed-in member's registration
//	PUT  /member/profile    update the signed-in member's profile
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Post("/registrations", h.HandleSubmit)
	r.Post("/member/login", h.HandleLogin)
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleMember))
		pr.Get("/member/profile", h.ServeProfile)
		pr.Put("/member/profile", h.HandleUpdateProfile)
	})
}
