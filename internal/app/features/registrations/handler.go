// internal/app/features/registrations/handler.go
package registrations

import (
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	registrationstore "github.com/aiesociety/aiesweb/internal/app/store/registrations"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the administrator side of the registration workflow.
type Handler struct {
	Store  *registrationstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(store *registrationstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeList handles GET /?status=pending|approved|rejected. Without a
// status every registration is listed, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list registrations")
	defer cancel()

	regs, err := h.Store.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		h.ErrLog.Respond(w, r, "list registrations", err)
		return
	}
	uierrors.OK(w, regs)
}

// ServeGet handles GET /{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get registration")
	defer cancel()

	reg, err := h.Store.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get registration", err)
		return
	}
	uierrors.OK(w, reg)
}

// HandleApprove handles POST /{id}/approve and returns the new Member.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "approve registration")
	defer cancel()

	member, err := h.Store.Approve(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "approve registration", err)
		return
	}
	uierrors.Created(w, member)
}

// HandleReject handles POST /{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reject registration")
	defer cancel()

	if err := h.Store.Reject(ctx, id); err != nil {
		h.ErrLog.Respond(w, r, "reject registration", err)
		return
	}
	uierrors.OK(w, nil)
}

type statusBody struct {
	Status string `json:"status"`
}

// HandleStatus handles PUT /{id}/status with {"status": "..."}. Moving to
// approved goes through the approval path and creates the Member.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var body statusBody
	if err := uierrors.DecodeJSON(w, r, &body); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode status", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration status")
	defer cancel()

	if err := h.Store.SetStatus(ctx, id, body.Status); err != nil {
		h.ErrLog.Respond(w, r, "set registration status", err)
		return
	}
	uierrors.OK(w, statusBody{Status: body.Status})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad registration id", err, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
