// internal/app/features/adminlogin/handler.go
package adminlogin

import (
	"net/http"
	"strings"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	"github.com/aiesociety/aiesweb/internal/app/system/apperr"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/app/system/ratelimit"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is the single answer to any failed admin sign-in.
var ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")

// Handler signs the administrator in against the configured credential.
type Handler struct {
	Email        string
	PasswordHash string
	Sessions     *auth.SessionManager
	ErrLog       *uierrors.ErrorLogger
	Log          *zap.Logger

	// Limiter throttles attempts; nil disables throttling.
	Limiter *ratelimit.LoginLimiter
}

// NewHandler constructs a Handler for the admin account email whose bcrypt
// hash is passwordHash. An empty hash disables admin sign-in.
func NewHandler(email, passwordHash string, sessions *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Sessions:     sessions,
		ErrLog:       errLog,
		Log:          logger,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := uierrors.DecodeJSON(w, r, &c); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode admin login", err, "")
		return
	}
	fe := schema.FieldErrors{}
	if strings.TrimSpace(c.Email) == "" {
		fe["email"] = "is required"
	}
	if c.Password == "" {
		fe["password"] = "is required"
	}
	if len(fe) > 0 {
		h.ErrLog.Respond(w, r, "admin login", fe)
		return
	}

	if err := h.Limiter.Check(r, c.Email); err != nil {
		h.ErrLog.Respond(w, r, "admin login throttled", err)
		return
	}

	if h.PasswordHash == "" || h.Email == "" {
		h.Log.Warn("admin login attempted but no admin credential is configured")
		h.ErrLog.Respond(w, r, "admin login", ErrInvalidCredentials)
		return
	}
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	pwErr := auth.CheckPassword(h.PasswordHash, c.Password)
	if text.Fold(strings.TrimSpace(c.Email)) != text.Fold(h.Email) || pwErr != nil {
		h.ErrLog.Respond(w, r, "admin login", ErrInvalidCredentials)
		return
	}

	s, err := h.Sessions.Issue(w, r, auth.Session{
		Subject: h.Email,
		Role:    auth.RoleAdmin,
		Name:    "Administrator",
		Email:   h.Email,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue admin session", err, "")
		return
	}
	h.Limiter.Succeeded(c.Email)
	h.Log.Info("admin signed in", zap.String("email", h.Email))
	uierrors.OK(w, s)
}
