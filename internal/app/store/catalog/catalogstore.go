// internal/app/store/catalog/catalogstore.go
package catalogstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/apperr"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound = apperr.New(apperr.NotFound, "document not found")
	// ErrNoBlobStore is returned when a payload carries an upload but the
	// repo was built without a blob store.
	ErrNoBlobStore = errors.New("blob storage is not configured")
)

// insertConcurrency bounds concurrent inserts in InsertMany.
const insertConcurrency = 8

// Deps are the collaborators shared by every Repo.
type Deps struct {
	DB        *mongo.Database
	Blobs     blobstore.Store
	Views     *viewcache.Cache
	Validator *schema.Validator
	Log       *zap.Logger
}

// Repo stores one catalog kind. PT is the pointer type of T, which carries
// the models.Entity methods; the kind and its collection come from T, so a
// Repo cannot be pointed at the wrong collection.
type Repo[T any, PT interface {
	*T
	models.Entity
}] struct {
	kind  models.Kind
	c     *mongo.Collection
	blobs blobstore.Store
	views *viewcache.Cache
	v     *schema.Validator
	log   *zap.Logger
	now   func() time.Time
}

// New returns the Repo for T's kind.
func New[T any, PT interface {
	*T
	models.Entity
}](d Deps) *Repo[T, PT] {
	var zero T
	kind := PT(&zero).Kind()
	v := d.Validator
	if v == nil {
		v = schema.New()
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo[T, PT]{
		kind:  kind,
		c:     d.DB.Collection(kind.Collection()),
		blobs: d.Blobs,
		views: d.Views,
		v:     v,
		log:   log.With(zap.String("collection", kind.Collection())),
		now:   time.Now,
	}
}

// Kind is the entity kind stored by r.
func (r *Repo[T, PT]) Kind() models.Kind { return r.kind }

// Save inserts e when it has no id and otherwise merges the non-zero fields
// of e into the stored document. Validation runs before any storage call:
// full validation on insert, supplied fields only on update.
func (r *Repo[T, PT]) Save(ctx context.Context, e *T) (*T, error) {
	if PT(e).GetID().IsZero() {
		return r.insert(ctx, e)
	}
	return r.update(ctx, e)
}

func (r *Repo[T, PT]) insert(ctx context.Context, e *T) (*T, error) {
	p := PT(e)
	if err := r.v.Struct(e); err != nil {
		return nil, err
	}
	normalize(p)

	now := r.now().UTC().Truncate(time.Millisecond)
	created, _, err := r.storeBlobs(ctx, p, nil, now)
	if err != nil {
		return nil, err
	}

	p.SetID(primitive.NewObjectID())
	p.SetTimes(&now, &now)
	if _, err := r.c.InsertOne(ctx, e); err != nil {
		r.discard(ctx, created)
		return nil, fmt.Errorf("insert %s: %w", r.kind, err)
	}

	r.invalidate()
	r.log.Info("document created", zap.String("id", p.GetID().Hex()))
	return e, nil
}

func (r *Repo[T, PT]) update(ctx context.Context, patch *T) (*T, error) {
	p := PT(patch)
	id := p.GetID()
	if err := r.v.Partial(patch); err != nil {
		return nil, err
	}
	normalize(p)

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	created, unset, err := r.storeBlobs(ctx, p, PT(current).Blobs(), now)
	if err != nil {
		return nil, err
	}
	if u, ok := any(p).(interface{ Unsets() []string }); ok {
		unset = append(unset, u.Unsets()...)
	}

	p.SetTimes(nil, &now)
	set, err := toSet(patch)
	if err != nil {
		r.discard(ctx, created)
		return nil, err
	}
	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		un := bson.M{}
		for _, k := range unset {
			un[k] = ""
		}
		upd["$unset"] = un
	}

	var updated T
	err = r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, upd,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		r.discard(ctx, created)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", r.kind, id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("update %s: %w", r.kind, err)
	}

	r.discard(ctx, orphaned(PT(current), PT(&updated)))
	r.invalidate()
	r.log.Info("document updated", zap.String("id", id.Hex()))
	return &updated, nil
}

// Get returns the document with the given id.
func (r *Repo[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", r.kind, id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &out, nil
}

// List returns every document, newest first.
func (r *Repo[T, PT]) List(ctx context.Context) ([]T, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the document and then best-effort deletes the blobs it
// referenced. A missing blob is ignored; any other blob failure is logged
// and the delete still succeeds.
func (r *Repo[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	var removed T
	if err := r.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s %s: %w", r.kind, id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", r.kind, err)
	}

	r.discard(ctx, paths(PT(&removed)))
	r.invalidate()
	r.log.Info("document deleted", zap.String("id", id.Hex()))
	return nil
}

// InsertMany validates every item and, only if all pass, inserts them
// concurrently as independent documents. Field errors are keyed
// "<1-based item>.<field>". A failed insert aborts the batch with one
// error; rows already written stay written.
func (r *Repo[T, PT]) InsertMany(ctx context.Context, items []T) (int, error) {
	fe := schema.FieldErrors{}
	for i := range items {
		if err := r.v.Struct(&items[i]); err != nil {
			var rowErrs schema.FieldErrors
			if !errors.As(err, &rowErrs) {
				return 0, err
			}
			for k, msg := range rowErrs {
				fe[fmt.Sprintf("%d.%s", i+1, k)] = msg
			}
		}
	}
	if len(fe) > 0 {
		return 0, fe
	}

	var inserted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(insertConcurrency)
	for i := range items {
		p := PT(&items[i])
		g.Go(func() error {
			normalize(p)
			now := r.now().UTC().Truncate(time.Millisecond)
			created, _, err := r.storeBlobs(gctx, p, nil, now)
			if err != nil {
				return err
			}
			p.SetID(primitive.NewObjectID())
			p.SetTimes(&now, &now)
			if _, err := r.c.InsertOne(gctx, p); err != nil {
				r.discard(context.WithoutCancel(gctx), created)
				return err
			}
			inserted.Add(1)
			return nil
		})
	}
	err := g.Wait()
	n := int(inserted.Load())
	if n > 0 {
		r.invalidate()
	}
	if err != nil {
		return n, fmt.Errorf("batch insert %s: %d of %d written: %w", r.kind, n, len(items), err)
	}
	r.log.Info("batch inserted", zap.Int("count", n))
	return n, nil
}

// storeBlobs moves uploads referenced by p into the blob store and rewrites
// the URL/path pairs in place. Inline data URIs are ingested and temporary
// uploads promoted. An external URL clears the path; on update (prev holds
// the stored pairs) the path key is returned for $unset unless the URL is
// the one already stored. It returns the paths it created.
func (r *Repo[T, PT]) storeBlobs(ctx context.Context, p PT, prev []models.BlobField, now time.Time) (created, unset []string, err error) {
	for i, b := range p.Blobs() {
		u := *b.URL
		if u == "" {
			continue
		}
		if !schema.IsImageDataURI(u) && !schema.IsTempPath(u) {
			*b.Path = ""
			if prev != nil && *prev[i].URL != u {
				unset = append(unset, b.PathKey)
			}
			continue
		}
		if r.blobs == nil {
			r.discard(ctx, created)
			return nil, nil, ErrNoBlobStore
		}

		var dst, url string
		if schema.IsImageDataURI(u) {
			dst, url, err = blobstore.IngestDataURI(ctx, r.blobs, u, r.kind.Collection(), now)
		} else {
			dst, url, err = blobstore.Promote(ctx, r.blobs, u, r.kind.Collection(), now)
		}
		if err != nil {
			r.discard(ctx, created)
			return nil, nil, fmt.Errorf("store upload: %w", err)
		}
		*b.URL, *b.Path = url, dst
		created = append(created, dst)
	}
	return created, unset, nil
}

// discard best-effort deletes blobs.
func (r *Repo[T, PT]) discard(ctx context.Context, blobPaths []string) {
	if r.blobs == nil {
		return
	}
	for _, p := range blobPaths {
		err := r.blobs.Delete(ctx, p)
		switch {
		case err == nil:
		case blobstore.IsNotFound(err):
			r.log.Debug("blob already gone", zap.String("path", p))
		default:
			r.log.Warn("blob cleanup failed", zap.String("path", p), zap.Error(err))
		}
	}
}

func (r *Repo[T, PT]) invalidate() {
	if r.views != nil {
		r.views.Invalidate(r.kind)
	}
}

func normalize(e models.Entity) {
	if n, ok := e.(interface{ Normalize() }); ok {
		n.Normalize()
	}
}

// toSet encodes the non-zero fields of v as a $set document.
func toSet(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "_id")
	return m, nil
}

// paths returns the stored blob paths of e.
func paths(e models.Entity) []string {
	var out []string
	for _, b := range e.Blobs() {
		if *b.Path != "" {
			out = append(out, *b.Path)
		}
	}
	return out
}

// orphaned returns the blob paths of before that after no longer references.
func orphaned(before, after models.Entity) []string {
	keep := map[string]bool{}
	for _, p := range paths(after) {
		keep[p] = true
	}
	var out []string
	for _, p := range paths(before) {
		if !keep[p] {
			out = append(out, p)
		}
	}
	return out
}
