// internal/app/features/assist/handler.go
package assist

import (
	"net/http"
	"strings"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	"github.com/aiesociety/aiesweb/internal/app/system/assist"
	"github.com/aiesociety/aiesweb/internal/app/system/journalmetrics"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the administrator AI helpers. Service or Metrics may be
// nil when their API key is not configured; the matching endpoints then
// answer 503.
type Handler struct {
	Service *assist.Service
	Metrics *journalmetrics.Client
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs an assist Handler.
func NewHandler(svc *assist.Service, metrics *journalmetrics.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		Metrics: metrics,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type descriptionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type descriptionResponse struct {
	Description string `json:"description"`
}

// HandleDescription handles POST /description.
func (h *Handler) HandleDescription(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		uierrors.Fail(w, http.StatusServiceUnavailable, "AI assist is not configured")
		return
	}
	var req descriptionRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode description request", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "generate description")
	defer cancel()

	desc, err := h.Service.GenerateDescription(ctx, req.Code, req.Language)
	if err != nil {
		h.ErrLog.Respond(w, r, "generate description", err)
		return
	}
	uierrors.OK(w, descriptionResponse{Description: desc})
}

type snippetsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CodeContent string `json:"codeContent"`
}

type snippetsResponse struct {
	RelevantSnippets []string `json:"relevantSnippets"`
}

// HandleSnippets handles POST /snippets. Suggestions are a nicety: a model
// failure is logged and answered with an empty list.
func (h *Handler) HandleSnippets(w http.ResponseWriter, r *http.Request) {
	var req snippetsRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode snippets request", err, "")
		return
	}
	if h.Service == nil {
		uierrors.OK(w, snippetsResponse{RelevantSnippets: []string{}})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "suggest snippets")
	defer cancel()

	snippets, err := h.Service.SuggestRelatedSnippets(ctx, req.Title, req.Description, req.CodeContent)
	if err != nil {
		h.Log.Warn("snippet suggestion failed", zap.Error(err))
		snippets = []string{}
	}
	uierrors.OK(w, snippetsResponse{RelevantSnippets: snippets})
}

type metricsRequest struct {
	Query string `json:"query"`
}

// HandleJournalMetrics handles POST /journal-metrics. A journal the
// upstream does not know yields data null; other upstream failures are
// reported as 502.
func (h *Handler) HandleJournalMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Metrics == nil {
		uierrors.Fail(w, http.StatusServiceUnavailable, "journal metrics are not configured")
		return
	}
	var req metricsRequest
	if err := uierrors.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode metrics request", err, "")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.ErrLog.Respond(w, r, "journal metrics", schema.FieldErrors{"query": "is required"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "journal metrics")
	defer cancel()

	m, err := h.Metrics.Search(ctx, req.Query)
	if err != nil {
		h.Log.Error("journal metrics lookup failed", zap.String("query", req.Query), zap.Error(err))
		uierrors.Fail(w, http.StatusBadGateway, err.Error())
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, metricsEnvelope{Success: true, Data: m})
}

// metricsEnvelope keeps a null result visible as "data": null.
type metricsEnvelope struct {
	Success bool                    `json:"success"`
	Data    *journalmetrics.Metrics `json:"data"`
}
