// internal/app/features/catalog/handler.go
package catalog

import (
	"encoding/json"
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the administrator CRUD endpoints of one catalog kind.
// The kind is fixed by T, so a handler can only ever reach its own
// collection.
type Handler[T any, PT interface {
	*T
	models.Entity
}] struct {
	Repo   *catalogstore.Repo[T, PT]
	Views  *viewcache.Cache
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a Handler over repo. views may be nil.
func NewHandler[T any, PT interface {
	*T
	models.Entity
}](repo *catalogstore.Repo[T, PT], views *viewcache.Cache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler[T, PT] {
	return &Handler[T, PT]{
		Repo:   repo,
		Views:  views,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeList handles GET / and returns every document, newest first.
// The payload is cached under the kind's admin view until a mutation
// invalidates it.
func (h *Handler[T, PT]) ServeList(w http.ResponseWriter, r *http.Request) {
	view := viewcache.AdminView(h.Repo.Kind())
	if h.Views != nil {
		if b, ok := h.Views.Get(view); ok {
			writeCached(w, b)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "catalog list")
	defer cancel()

	items, err := h.Repo.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "list "+h.Repo.Kind().Name(), err)
		return
	}

	b, err := json.Marshal(uierrors.Envelope{Success: true, Data: items})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "encode listing", err, "")
		return
	}
	if h.Views != nil {
		h.Views.Set(view, b)
	}
	writeCached(w, b)
}

// ServeGet handles GET /{id}.
func (h *Handler[T, PT]) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "catalog get")
	defer cancel()

	e, err := h.Repo.Get(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "get "+h.Repo.Kind().Name(), err)
		return
	}
	uierrors.OK(w, e)
}

// HandleCreate handles POST /. Any id in the body is ignored.
func (h *Handler[T, PT]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var e T
	if err := uierrors.DecodeJSON(w, r, &e); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode "+h.Repo.Kind().Name(), err, "")
		return
	}
	PT(&e).SetID(primitive.NilObjectID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "catalog create")
	defer cancel()

	saved, err := h.Repo.Save(ctx, &e)
	if err != nil {
		h.ErrLog.Respond(w, r, "create "+h.Repo.Kind().Name(), err)
		return
	}
	uierrors.Created(w, saved)
}

// HandleUpdate handles PUT /{id}. Only the fields present in the body are
// changed.
func (h *Handler[T, PT]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var e T
	if err := uierrors.DecodeJSON(w, r, &e); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode "+h.Repo.Kind().Name(), err, "")
		return
	}
	PT(&e).SetID(id)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "catalog update")
	defer cancel()

	saved, err := h.Repo.Save(ctx, &e)
	if err != nil {
		h.ErrLog.Respond(w, r, "update "+h.Repo.Kind().Name(), err)
		return
	}
	uierrors.OK(w, saved)
}

// HandleDelete handles DELETE /{id}.
func (h *Handler[T, PT]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "catalog delete")
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		h.ErrLog.Respond(w, r, "delete "+h.Repo.Kind().Name(), err)
		return
	}
	uierrors.OK(w, nil)
}

func (h *Handler[T, PT]) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad id", err, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeCached(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
