// internal/app/features/registration/handler.go
package registration

import (
	"net/http"
	"strings"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	registrationstore "github.com/aiesociety/aiesweb/internal/app/store/registrations"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/app/system/ratelimit"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the applicant and member side of the registration
// workflow: submitting an application, signing in once approved, and
// maintaining the profile.
type Handler struct {
	Store    *registrationstore.Store
	Sessions *auth.SessionManager
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	// Limiter throttles sign-in attempts; nil disables throttling.
	Limiter *ratelimit.LoginLimiter
}

// NewHandler constructs a registration Handler.
func NewHandler(store *registrationstore.Store, sessions *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Sessions: sessions,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// HandleSubmit handles POST /registrations.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in models.RegistrationInput
	if err := uierrors.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode registration", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration submit")
	defer cancel()

	reg, err := h.Store.Submit(ctx, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "registration submit", err)
		return
	}
	uierrors.Created(w, reg)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentials) check() error {
	fe := schema.FieldErrors{}
	if strings.TrimSpace(c.Email) == "" {
		fe["email"] = "is required"
	}
	if c.Password == "" {
		fe["password"] = "is required"
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// HandleLogin handles POST /member/login. Only approved registrations get a
// session; pending, rejected, unknown and wrong-password attempts are each
// reported with their own message.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := uierrors.DecodeJSON(w, r, &c); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login", err, "")
		return
	}
	if err := c.check(); err != nil {
		h.ErrLog.Respond(w, r, "member login", err)
		return
	}
	if err := h.Limiter.Check(r, c.Email); err != nil {
		h.ErrLog.Respond(w, r, "member login throttled", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "member login")
	defer cancel()

	reg, err := h.Store.Login(ctx, c.Email, c.Password)
	if err != nil {
		h.ErrLog.Respond(w, r, "member login", err)
		return
	}

	s, err := h.Sessions.Issue(w, r, auth.Session{
		Subject: reg.ID.Hex(),
		Role:    auth.RoleMember,
		Name:    reg.Name,
		Email:   reg.Email,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue member session", err, "")
		return
	}
	h.Limiter.Succeeded(c.Email)
	h.Log.Info("member signed in", zap.String("id", reg.ID.Hex()))
	uierrors.OK(w, s)
}

// ServeProfile handles GET /member/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "member profile")
	defer cancel()

	reg, err := h.Store.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "load profile", err)
		return
	}
	uierrors.OK(w, reg)
}

// HandleUpdateProfile handles PUT /member/profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.memberID(w, r)
	if !ok {
		return
	}
	var upd models.ProfileUpdate
	if err := uierrors.DecodeJSON(w, r, &upd); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode profile", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "profile update")
	defer cancel()

	reg, err := h.Store.UpdateProfile(ctx, id, upd)
	if err != nil {
		h.ErrLog.Respond(w, r, "profile update", err)
		return
	}
	uierrors.OK(w, reg)
}

func (h *Handler) memberID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(s.Subject)
	if err != nil {
		h.ErrLog.LogForbidden(w, r, "member session without registration id", err, "forbidden")
		return primitive.NilObjectID, false
	}
	return id, true
}
