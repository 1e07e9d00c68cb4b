// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/apperr"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"github.com/aiesociety/aiesweb/internal/app/system/htmlsanitize"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/txn"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = apperr.New(apperr.NotFound, "registration not found")
	ErrDuplicateEmail  = apperr.New(apperr.Conflict, "a registration with this email already exists")
	ErrAlreadyApproved = apperr.New(apperr.Conflict, "registration is already approved")

	// Login denials. Each has its own message.
	ErrAccountNotFound    = apperr.New(apperr.Unauthorized, "no registration found for this email")
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")
	ErrAccountPending     = apperr.New(apperr.Forbidden, "your registration is still pending approval")
	ErrAccountRejected    = apperr.New(apperr.Forbidden, "your registration has been rejected")
)

// Deps are the store's collaborators. Blobs and Views may be nil.
type Deps struct {
	DB        *mongo.Database
	Blobs     blobstore.Store
	Views     *viewcache.Cache
	Validator *schema.Validator
	Log       *zap.Logger
	// HashCost is the bcrypt cost; zero uses auth.DefaultCost.
	HashCost int
}

// Store runs the registration workflow over the registrations and members
// collections.
type Store struct {
	db       *mongo.Database
	regs     *mongo.Collection
	members  *mongo.Collection
	blobs    blobstore.Store
	views    *viewcache.Cache
	v        *schema.Validator
	log      *zap.Logger
	hashCost int
	now      func() time.Time
}

// New creates a registration store.
func New(d Deps) *Store {
	v := d.Validator
	if v == nil {
		v = schema.New()
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:       d.DB,
		regs:     d.DB.Collection(models.RegistrationsCollection),
		members:  d.DB.Collection(models.KindMember.Collection()),
		blobs:    d.Blobs,
		views:    d.Views,
		v:        v,
		log:      log,
		hashCost: d.HashCost,
		now:      time.Now,
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Submit validates in and stores it as a pending registration. The email
// must not already be registered (compared case-insensitively).
func (s *Store) Submit(ctx context.Context, in models.RegistrationInput) (models.Registration, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Biography = htmlsanitize.PlainText(in.Biography)
	if err := s.v.Struct(&in); err != nil {
		return models.Registration{}, err
	}

	emailCI := text.Fold(in.Email)
	n, err := s.regs.CountDocuments(ctx, bson.M{"email_ci": emailCI})
	if err != nil {
		return models.Registration{}, err
	}
	if n > 0 {
		return models.Registration{}, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password, s.hashCost)
	if err != nil {
		return models.Registration{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.stamp()
	photo, photoPath, err := s.storePhoto(ctx, in.Photo, now)
	if err != nil {
		return models.Registration{}, err
	}

	reg := models.Registration{
		ID:               primitive.NewObjectID(),
		RegistrationType: in.RegistrationType,
		Name:             strings.TrimSpace(in.Name),
		Email:            in.Email,
		EmailCI:          emailCI,
		Contact:          strings.TrimSpace(in.Contact),
		Biography:        in.Biography,
		Photo:            photo,
		PhotoPath:        photoPath,
		LinkedIn:         in.LinkedIn,
		Twitter:          in.Twitter,
		GoogleScholar:    in.GoogleScholar,
		Website:          in.Website,
		PasswordHash:     hash,
		Status:           models.StatusPending,
		CreatedAt:        now,
	}
	if _, err := s.regs.InsertOne(ctx, reg); err != nil {
		s.discard(ctx, photoPath)
		if wafflemongo.IsDup(err) {
			return models.Registration{}, ErrDuplicateEmail
		}
		return models.Registration{}, err
	}

	s.log.Info("registration submitted",
		zap.String("id", reg.ID.Hex()),
		zap.String("type", reg.RegistrationType))
	return reg, nil
}

// Get returns a registration by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Registration, error) {
	var reg models.Registration
	if err := s.regs.FindOne(ctx, bson.M{"_id": id}).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Registration{}, ErrNotFound
		}
		return models.Registration{}, err
	}
	return reg, nil
}

// List returns registrations newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, status string) ([]models.Registration, error) {
	filter := bson.M{}
	if status != "" {
		if !models.IsValidStatus(status) {
			return nil, statusError()
		}
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.regs.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Registration{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Approve creates the Member derived from the registration and marks the
// registration approved, atomically. On deployments without transactions
// the writes run in order and the Member is removed again if the status
// update fails.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return models.Member{}, err
	}
	if reg.Status == models.StatusApproved {
		return models.Member{}, ErrAlreadyApproved
	}

	now := s.stamp()
	member := models.MemberFromRegistration(reg)
	member.ID = primitive.NewObjectID()
	member.SetTimes(&now, &now)

	// Matching on status guards against a concurrent approve.
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.StatusApproved}}
	update := bson.M{"$set": bson.M{"status": models.StatusApproved, "updated_at": now}}

	err = txn.Run(ctx, s.db, func(sc mongo.SessionContext) error {
		if _, err := s.members.InsertOne(sc, member); err != nil {
			return err
		}
		res, err := s.regs.UpdateOne(sc, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrAlreadyApproved
		}
		return nil
	})
	if errors.Is(err, txn.ErrNotSupported) {
		s.log.Warn("transactions unavailable; approving without a transaction",
			zap.String("id", id.Hex()))
		err = s.approveSequential(ctx, member, filter, update)
	}
	if err != nil {
		return models.Member{}, err
	}

	if s.views != nil {
		s.views.Invalidate(models.KindMember)
	}
	s.log.Info("registration approved",
		zap.String("id", id.Hex()),
		zap.String("member_id", member.ID.Hex()))
	return member, nil
}

func (s *Store) approveSequential(ctx context.Context, member models.Member, filter, update bson.M) error {
	if _, err := s.members.InsertOne(ctx, member); err != nil {
		return err
	}
	res, err := s.regs.UpdateOne(ctx, filter, update)
	if err == nil && res.MatchedCount == 0 {
		err = ErrAlreadyApproved
	}
	if err != nil {
		if _, derr := s.members.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": member.ID}); derr != nil {
			s.log.Error("approve: failed to remove member after status update failed",
				zap.String("member_id", member.ID.Hex()), zap.Error(derr))
		}
		return err
	}
	return nil
}

// Reject marks a registration rejected. No Member is touched.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.StatusRejected)
}

// SetStatus is the administrator's free transition. Moving to approved goes
// through Approve so the Member is created; moving away from approved
// leaves the derived Member in place.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.IsValidStatus(status) {
		return statusError()
	}
	if status == models.StatusApproved {
		_, err := s.Approve(ctx, id)
		return err
	}
	return s.setStatus(ctx, id, status)
}

func (s *Store) setStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.regs.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": s.stamp()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	s.log.Info("registration status changed",
		zap.String("id", id.Hex()),
		zap.String("status", status))
	return nil
}

// Login checks the credentials and returns the registration only when it
// is approved. The password is checked before the status, so the status of
// an account is disclosed only to someone holding its password.
func (s *Store) Login(ctx context.Context, email, password string) (models.Registration, error) {
	var reg models.Registration
	err := s.regs.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Registration{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Registration{}, err
	}

	if err := auth.CheckPassword(reg.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.Warn("login: unusable password hash", zap.String("id", reg.ID.Hex()), zap.Error(err))
		}
		return models.Registration{}, ErrInvalidCredentials
	}

	switch reg.Status {
	case models.StatusApproved:
		return reg, nil
	case models.StatusPending:
		return models.Registration{}, ErrAccountPending
	default:
		return models.Registration{}, ErrAccountRejected
	}
}

// UpdateProfile merges the non-empty fields of upd into the registration.
// Status and email cannot be changed here.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (models.Registration, error) {
	upd.Biography = htmlsanitize.PlainText(upd.Biography)
	if err := s.v.Partial(&upd); err != nil {
		return models.Registration{}, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Registration{}, err
	}
	if upd.IsEmpty() {
		return current, nil
	}

	now := s.stamp()
	set := bson.M{"updated_at": now}
	unset := bson.M{}
	if upd.Name != "" {
		set["name"] = strings.TrimSpace(upd.Name)
	}
	if upd.Contact != "" {
		set["contact"] = strings.TrimSpace(upd.Contact)
	}
	if upd.Biography != "" {
		set["biography"] = upd.Biography
	}
	for k, v := range map[string]string{
		"linkedin":       upd.LinkedIn,
		"twitter":        upd.Twitter,
		"google_scholar": upd.GoogleScholar,
		"website":        upd.Website,
	} {
		if v != "" {
			set[k] = v
		}
	}

	var newPath string
	if upd.Photo != "" && upd.Photo != current.Photo {
		photo, p, err := s.storePhoto(ctx, upd.Photo, now)
		if err != nil {
			return models.Registration{}, err
		}
		set["photo"], newPath = photo, p
		if p != "" {
			set["photo_path"] = p
		} else {
			unset["photo_path"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	var out models.Registration
	err = s.regs.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		s.discard(ctx, newPath)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Registration{}, ErrNotFound
		}
		return models.Registration{}, err
	}

	// An approved registration's Member may still show the old photo.
	if current.PhotoPath != "" && current.PhotoPath != out.PhotoPath && current.Status != models.StatusApproved {
		s.discard(ctx, current.PhotoPath)
	}
	s.log.Info("profile updated", zap.String("id", id.Hex()))
	return out, nil
}

// storePhoto moves an inline or temporary photo into the blob store. An
// external URL is returned unchanged with an empty path.
func (s *Store) storePhoto(ctx context.Context, photo string, now time.Time) (string, string, error) {
	if !schema.IsImageDataURI(photo) && !schema.IsTempPath(photo) {
		return photo, "", nil
	}
	if s.blobs == nil {
		return "", "", errors.New("blob storage is not configured")
	}
	var (
		p, u string
		err  error
	)
	if schema.IsImageDataURI(photo) {
		p, u, err = blobstore.IngestDataURI(ctx, s.blobs, photo, models.RegistrationsCollection, now)
	} else {
		p, u, err = blobstore.Promote(ctx, s.blobs, photo, models.RegistrationsCollection, now)
	}
	if err != nil {
		return "", "", fmt.Errorf("store photo: %w", err)
	}
	return u, p, nil
}

func (s *Store) discard(ctx context.Context, p string) {
	if p == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, p); err != nil && !blobstore.IsNotFound(err) {
		s.log.Warn("photo cleanup failed", zap.String("path", p), zap.Error(err))
	}
}

func statusError() error {
	return schema.FieldErrors{"status": "must be one of: pending, approved, rejected"}
}
