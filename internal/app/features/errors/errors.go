// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/aiesociety/aiesweb/internal/app/system/apperr"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"go.uber.org/zap"
)

// Envelope is the uniform JSON body returned by every API endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success envelope carrying data (which may be nil).
func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail writes a failure envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Success: false, Error: msg})
}

// ErrorLogger logs a failure with request context and writes the matching
// failure envelope.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		f = append(f, zap.Error(err))
	}
	return f
}

// LogServerError logs at Error and writes a 500. An empty userMsg passes
// the error text through.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	Fail(w, http.StatusInternalServerError, userMessage(err, userMsg))
}

// LogBadRequest logs at Warn and writes a 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	Fail(w, http.StatusBadRequest, userMessage(err, userMsg))
}

// LogForbidden logs at Warn and writes a 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	Fail(w, http.StatusForbidden, userMessage(err, userMsg))
}

// Respond classifies err and writes the matching envelope:
// validation 422 with per-field messages, not found 404, conflict 409,
// unauthorized 401, forbidden 403, throttled 429, anything else 500.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	switch apperr.KindOf(err) {
	case apperr.Invalid:
		var fe schema.FieldErrors
		_ = asFieldErrors(err, &fe)
		e.Log.Info(logMsg, e.fields(r, err)...)
		WriteJSON(w, http.StatusUnprocessableEntity, Envelope{Success: false, Error: "validation failed", Fields: fe})
	case apperr.NotFound:
		Fail(w, http.StatusNotFound, err.Error())
	case apperr.Conflict:
		e.Log.Info(logMsg, e.fields(r, err)...)
		Fail(w, http.StatusConflict, err.Error())
	case apperr.Unauthorized:
		e.Log.Info(logMsg, e.fields(r, err)...)
		Fail(w, http.StatusUnauthorized, err.Error())
	case apperr.Forbidden:
		e.LogForbidden(w, r, logMsg, err, "")
	case apperr.TooManyRequests:
		e.Log.Warn(logMsg, e.fields(r, err)...)
		Fail(w, http.StatusTooManyRequests, err.Error())
	default:
		e.LogServerError(w, r, logMsg, err, "")
	}
}

func userMessage(err error, userMsg string) string {
	if userMsg != "" {
		return userMsg
	}
	if err != nil {
		return err.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}
