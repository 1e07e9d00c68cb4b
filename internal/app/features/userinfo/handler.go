// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"

	"github.com/aiesociety/aiesweb/internal/app/system/auth"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo returns JSON with the current session's authentication
// status and identity.
//
// Response format:
//
//	{ "isAuthenticated": bool, "role": "admin|member", "name": "...", "email": "...", "expiresAt": "..." }
//
// Front ends call this on load to choose between the admin panel, the
// member dashboard and the public site.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	s, ok := auth.CurrentSession(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"isAuthenticated": false,
			"role":            "",
			"name":            "",
			"email":           "",
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"role":            s.Role,
		"name":            s.Name,
		"email":           s.Email,
		"expiresAt":       s.ExpiresAt,
	})
}
