// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"errors"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the singleton documents in site_settings.
type Store struct {
	c     *mongo.Collection
	v     *schema.Validator
	views *viewcache.Cache
}

// New creates a new settings store. views may be nil.
func New(db *mongo.Database, v *schema.Validator, views *viewcache.Cache) *Store {
	if v == nil {
		v = schema.New()
	}
	return &Store{c: db.Collection(models.SiteSettingsCollection), v: v, views: views}
}

// Counters returns the display counters, or models.DefaultCounters when the
// singleton has never been saved.
func (s *Store) Counters(ctx context.Context) (models.Counters, error) {
	var c models.Counters
	err := s.c.FindOne(ctx, bson.M{"_id": models.CountersID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultCounters, nil
	}
	if err != nil {
		return models.Counters{}, err
	}
	return c, nil
}

// SetCounters validates c and upserts it into the singleton. Applying the
// same value twice leaves the same document.
func (s *Store) SetCounters(ctx context.Context, c models.Counters) (models.Counters, error) {
	if err := s.v.Struct(&c); err != nil {
		return models.Counters{}, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	c.UpdatedAt = &now

	update := bson.M{
		"$set": bson.M{
			"members":     c.Members,
			"projects":    c.Projects,
			"journals":    c.Journals,
			"subscribers": c.Subscribers,
			"updated_at":  c.UpdatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": models.CountersID}, update, opts); err != nil {
		return models.Counters{}, err
	}

	if s.views != nil {
		s.views.InvalidateViews(viewcache.Home, viewcache.Counters)
	}
	return c, nil
}
