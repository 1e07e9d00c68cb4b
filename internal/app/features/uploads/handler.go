// internal/app/features/uploads/handler.go
package uploads

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"github.com/aiesociety/aiesweb/internal/app/system/limits"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single temporary upload.
const MaxUploadSize = limits.MaxUploadSize

// Handler stores temporary uploads and serves stored files.
type Handler struct {
	Blobs  blobstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a Handler over blobs.
func NewHandler(blobs blobstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Blobs:  blobs,
		ErrLog: errLog,
		Log:    logger,
	}
}

// Upload is the data of a successful upload. Path is what a later save
// references; the blob is moved out of the temporary area on save.
type Upload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// HandleUpload handles POST / with a multipart "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrLog.LogBadRequest(w, r, "upload too large", err, "File is too large. Maximum size is 20 MB.")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		h.ErrLog.LogBadRequest(w, r, "missing upload", err, "A file is required.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(header.Filename))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "temporary upload")
	defer cancel()

	p := blobstore.TempPath(header.Filename)
	if err := h.Blobs.Put(ctx, p, file, contentType); err != nil {
		h.ErrLog.LogServerError(w, r, "store upload failed", err, "")
		return
	}
	u, err := h.Blobs.URL(ctx, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "resolve upload url failed", err, "")
		return
	}

	h.Log.Info("temporary upload stored", zap.String("path", p), zap.Int64("size", header.Size))
	uierrors.Created(w, Upload{Path: p, URL: u})
}

// ServeFile handles GET /* for stores without their own public URLs.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	p := chi.URLParam(r, "*")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "serve file")
	defer cancel()

	rc, err := h.Blobs.Open(ctx, p)
	if err != nil {
		if blobstore.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		h.Log.Warn("open file failed", zap.String("path", p), zap.Error(err))
		http.Error(w, "file unavailable", http.StatusBadRequest)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Debug("serve file interrupted", zap.String("path", p), zap.Error(err))
	}
}
