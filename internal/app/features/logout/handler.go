// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /logout. The cookie is expired whether or not a
// session was present.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := auth.CurrentSession(r); ok {
		h.Log.Info("signed out", zap.String("role", s.Role), zap.String("subject", s.Subject))
	}
	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
		uierrors.Fail(w, http.StatusInternalServerError, "could not clear session")
		return
	}
	uierrors.OK(w, nil)
}
