// internal/app/features/counters/handler.go
package counters

import (
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	settingsstore "github.com/aiesociety/aiesweb/internal/app/store/settings"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the administrator counter settings.
type Handler struct {
	Store  *settingsstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a counters Handler.
func NewHandler(store *settingsstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:  store,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeCounters handles GET /.
func (h *Handler) ServeCounters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get counters")
	defer cancel()

	c, err := h.Store.Counters(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "get counters", err)
		return
	}
	uierrors.OK(w, c)
}

// HandleSetCounters handles PUT / with all four counts.
func (h *Handler) HandleSetCounters(w http.ResponseWriter, r *http.Request) {
	var c models.Counters
	if err := uierrors.DecodeJSON(w, r, &c); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode counters", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set counters")
	defer cancel()

	saved, err := h.Store.SetCounters(ctx, c)
	if err != nil {
		h.ErrLog.Respond(w, r, "set counters", err)
		return
	}
	h.Log.Info("counters updated",
		zap.Int("members", saved.Members),
		zap.Int("projects", saved.Projects),
		zap.Int("journals", saved.Journals),
		zap.Int("subscribers", saved.Subscribers))
	uierrors.OK(w, saved)
}
