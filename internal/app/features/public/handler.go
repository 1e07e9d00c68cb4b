// internal/app/features/public/handler.go
package public

import (
	"context"
	"encoding/json"
	"net/http"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	"github.com/aiesociety/aiesweb/internal/app/system/timeouts"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"go.uber.org/zap"
)

// HomeLimit is how many items of each featured kind the home view shows.
const HomeLimit = 6

// DisallowedPaths are the administrator surfaces excluded from crawling.
var DisallowedPaths = []string{"/admin", "/dashboard", "/login", "/user-dashboard"}

// Loader produces the data of one public view.
type Loader func(ctx context.Context) (any, error)

// Page binds a route to the cached view it serves.
type Page struct {
	Path string
	View string
	Load Loader
}

// Handler serves the public, cache-backed listings.
type Handler struct {
	Pages  []Page
	Views  *viewcache.Cache
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a Handler serving pages.
func NewHandler(pages []Page, views *viewcache.Cache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Pages:  pages,
		Views:  views,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ListOf returns a Loader listing every document of repo's kind.
func ListOf[T any, PT interface {
	*T
	models.Entity
}](repo *catalogstore.Repo[T, PT]) Loader {
	return func(ctx context.Context) (any, error) {
		return repo.List(ctx)
	}
}

// LatestOf returns a Loader listing at most n documents, newest first.
func LatestOf[T any, PT interface {
	*T
	models.Entity
}](repo *catalogstore.Repo[T, PT], n int) Loader {
	return func(ctx context.Context) (any, error) {
		items, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(items) > n {
			items = items[:n]
		}
		return items, nil
	}
}

// CountersOf returns a Loader for the counter settings.
func CountersOf(get func(ctx context.Context) (models.Counters, error)) Loader {
	return func(ctx context.Context) (any, error) {
		return get(ctx)
	}
}

// Home is the payload of the home view.
type Home struct {
	Counters  any `json:"counters"`
	Events    any `json:"events"`
	Papers    any `json:"papers"`
	Resources any `json:"resources"`
}

// HomeLoader assembles the home view from its parts.
func HomeLoader(counters, events, papers, resources Loader) Loader {
	return func(ctx context.Context) (any, error) {
		var (
			h   Home
			err error
		)
		if h.Counters, err = counters(ctx); err != nil {
			return nil, err
		}
		if h.Events, err = events(ctx); err != nil {
			return nil, err
		}
		if h.Papers, err = papers(ctx); err != nil {
			return nil, err
		}
		if h.Resources, err = resources(ctx); err != nil {
			return nil, err
		}
		return h, nil
	}
}

// ServePage returns the handler of p. A cached payload is written as is;
// otherwise the page is loaded, cached and written.
func (h *Handler) ServePage(p Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b, ok := h.Views.Get(p.View); ok {
			write(w, b, "HIT")
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "public view")
		defer cancel()

		data, err := p.Load(ctx)
		if err != nil {
			h.ErrLog.Respond(w, r, "load public view "+p.View, err)
			return
		}
		b, err := json.Marshal(uierrors.Envelope{Success: true, Data: data})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "encode public view "+p.View, err, "")
			return
		}
		h.Views.Set(p.View, b)
		write(w, b, "MISS")
	}
}

// ServeRobots handles GET /robots.txt.
func (h *Handler) ServeRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(robots()))
}

func robots() string {
	s := "User-agent: *\n"
	for _, p := range DisallowedPaths {
		s += "Disallow: " + p + "\n"
	}
	return s
}

func write(w http.ResponseWriter, b []byte, cache string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
