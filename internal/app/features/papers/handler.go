// internal/app/features/papers/handler.go
package papers

import (
	"errors"
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	"github.com/aiesociety/aiesweb/internal/app/system/csvutil"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the bulk paper import.
type Handler struct {
	Repo   *catalogstore.PaperRepo
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a Handler importing into repo.
func NewHandler(repo *catalogstore.PaperRepo, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Repo:   repo,
		ErrLog: errLog,
		Log:    logger,
	}
}

// importResult is the data of a successful import.
type importResult struct {
	Imported int `json:"imported"`
}

// HandleImport handles POST /import with a multipart "file" field holding
// the paper CSV. The whole file is checked before anything is written; any
// header or row failure rejects the batch with per-field messages keyed
// "<row>.<field>".
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.ErrLog.LogBadRequest(w, r, "csv too large", err, "File is too large. Maximum size is 5 MB.")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "missing csv file", err, "A CSV file is required.")
		return
	}
	defer file.Close()
	if header.Size > csvutil.MaxUploadSize {
		h.ErrLog.LogBadRequest(w, r, "csv too large", nil, "File is too large. Maximum size is 5 MB.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "paper import")
	defer cancel()

	n, err := catalogstore.ImportPapers(ctx, h.Repo, file)
	if err != nil {
		h.ErrLog.Respond(w, r, "paper import failed", err)
		return
	}

	h.Log.Info("papers imported", zap.String("file", header.Filename), zap.Int("count", n))
	uierrors.Created(w, importResult{Imported: n})
}
