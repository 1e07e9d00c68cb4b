// Package viewcache caches rendered public views (listing payloads) and
// drops them when the data behind them changes.
package viewcache

import (
	"time"

	"github.com/aiesociety/aiesweb/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// View paths.
const (
	Home           = "/"
	Courses        = "/courses"
	Partners       = "/about"
	Events         = "/events"
	Journals       = "/journals"
	DigitalLibrary = "/digital-library"
	Resources      = "/resources"
	Membership     = "/membership"
	Counters       = "/api/counters"
	AdminPrefix    = "/admin/"
)

// PublicView returns the public listing path of a kind.
func PublicView(k models.Kind) string {
	switch k {
	case models.KindCourse:
		return Courses
	case models.KindPartner:
		return Partners
	case models.KindEvent:
		return Events
	case models.KindJournal:
		return Journals
	case models.KindPaper:
		return DigitalLibrary
	case models.KindResource:
		return Resources
	case models.KindMember:
		return Membership
	}
	return ""
}

// AdminView returns the admin listing path of a kind.
func AdminView(k models.Kind) string {
	return AdminPrefix + k.Collection()
}

// Dependents lists every view that reads the given kind: its public view,
// its admin view and the pages that feature it.
func Dependents(k models.Kind) []string {
	views := []string{PublicView(k), AdminView(k)}
	switch k {
	case models.KindEvent, models.KindPaper, models.KindResource:
		views = append(views, Home)
	}
	return views
}

// Cache holds rendered views keyed by view path.
type Cache struct {
	c   *gocache.Cache
	log *zap.Logger
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &Cache{c: gocache.New(ttl, DefaultCleanupInterval), log: logger}
}

// Get returns the cached payload for view.
func (c *Cache) Get(view string) ([]byte, bool) {
	v, ok := c.c.Get(view)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores the payload for view with the default expiration.
func (c *Cache) Set(view string, payload []byte) {
	c.c.SetDefault(view, payload)
}

// InvalidateViews drops the given views.
func (c *Cache) InvalidateViews(views ...string) {
	for _, v := range views {
		c.c.Delete(v)
	}
	if c.log != nil {
		c.log.Debug("views invalidated", zap.Strings("views", views))
	}
}

// Invalidate drops every view that depends on kind k.
func (c *Cache) Invalidate(k models.Kind) {
	c.InvalidateViews(Dependents(k)...)
}

// Flush drops everything.
func (c *Cache) Flush() {
	c.c.Flush()
}
