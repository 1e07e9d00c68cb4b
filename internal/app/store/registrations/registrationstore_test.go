package registrationstore_test

import (
	"errors"
	"testing"

	registrationstore "github.com/aiesociety/aiesweb/internal/app/store/registrations"
	"github.com/aiesociety/aiesweb/internal/app/system/blobstore"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/aiesociety/aiesweb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newStore(t *testing.T) (*registrationstore.Store, *mongo.Database, *viewcache.Cache) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := db.Collection(models.RegistrationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err)

	views := viewcache.New(0, zap.NewNop())
	store := registrationstore.New(registrationstore.Deps{
		DB:       db,
		Blobs:    blobstore.NewMemory("/files"),
		Views:    views,
		Log:      zap.NewNop(),
		HashCost: 4,
	})
	return store, db, views
}

func count(t *testing.T, db *mongo.Database, coll string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection(coll).CountDocuments(ctx, filter)
	require.NoError(t, err)
	return n
}

func TestSubmit_StoresPendingWithHashedPassword(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.ValidRegistration("Ada@Example.org")
	in.Biography = "<b>Mathematician</b> and writer."
	reg, err := store.Submit(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, reg.Status)
	assert.False(t, reg.CreatedAt.IsZero())
	assert.NotEqual(t, in.Password, reg.PasswordHash)
	assert.Equal(t, "Mathematician and writer.", reg.Biography)

	var raw bson.M
	require.NoError(t, db.Collection(models.RegistrationsCollection).FindOne(ctx, bson.M{"_id": reg.ID}).Decode(&raw))
	assert.NotContains(t, raw, "password")
	assert.NotEqual(t, in.Password, raw["password_hash"])
}

func TestSubmit_InvalidInputWritesNothing(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.ValidRegistration("bob@example.org")
	in.Password = "123"
	in.Photo = ""
	_, err := store.Submit(ctx, in)

	var fe schema.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "password")
	assert.Contains(t, fe, "photo")
	assert.Zero(t, count(t, db, models.RegistrationsCollection, bson.M{}))
}

func TestSubmit_DuplicateEmailRejected(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Submit(ctx, testutil.ValidRegistration("a@x.com"))
	require.NoError(t, err)

	_, err = store.Submit(ctx, testutil.ValidRegistration("A@X.com"))
	assert.ErrorIs(t, err, registrationstore.ErrDuplicateEmail)
	assert.EqualValues(t, 1, count(t, db, models.RegistrationsCollection, bson.M{}))
}

func TestSubmit_InlinePhotoStored(t *testing.T) {
	store, _, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.ValidRegistration("inline@example.org")
	in.Photo = "data:image/png;base64,aGk="
	reg, err := store.Submit(ctx, in)
	require.NoError(t, err)
	assert.Contains(t, reg.PhotoPath, "registrations/")
	assert.Equal(t, "/files/"+reg.PhotoPath, reg.Photo)
}

// Submit, approve, then log in with the right and a wrong password.
func TestWorkflow_SubmitApproveLogin(t *testing.T) {
	store, db, views := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	views.Set(viewcache.Membership, []byte("cached"))

	in := testutil.ValidRegistration("a@x.com")
	reg, err := store.Submit(ctx, in)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, reg.Status)

	member, err := store.Approve(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, in.RegistrationType, member.Role)
	assert.Equal(t, reg.Photo, member.Img)
	assert.Equal(t, reg.Name, member.Name)
	assert.Equal(t, reg.LinkedIn, member.LinkedIn)
	assert.EqualValues(t, 1, count(t, db, "members", bson.M{}))

	got, err := store.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	_, ok := views.Get(viewcache.Membership)
	assert.False(t, ok, "membership view should be invalidated")

	profile, err := store.Login(ctx, "a@x.com", in.Password)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, profile.ID)

	_, err = store.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, registrationstore.ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestApprove_AlreadyApprovedCreatesNoSecondMember(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg, err := store.Submit(ctx, testutil.ValidRegistration("twice@example.org"))
	require.NoError(t, err)
	_, err = store.Approve(ctx, reg.ID)
	require.NoError(t, err)

	_, err = store.Approve(ctx, reg.ID)
	assert.ErrorIs(t, err, registrationstore.ErrAlreadyApproved)
	assert.EqualValues(t, 1, count(t, db, "members", bson.M{}))
}

func TestApprove_UnknownID(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Approve(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, registrationstore.ErrNotFound)
	assert.Zero(t, count(t, db, "members", bson.M{}))
}

func TestLogin_DistinctDenials(t *testing.T) {
	store, _, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pending, err := store.Submit(ctx, testutil.ValidRegistration("pending@example.org"))
	require.NoError(t, err)
	rejected, err := store.Submit(ctx, testutil.ValidRegistration("rejected@example.org"))
	require.NoError(t, err)
	require.NoError(t, store.Reject(ctx, rejected.ID))

	_, errPending := store.Login(ctx, "pending@example.org", "secret1")
	_, errRejected := store.Login(ctx, "rejected@example.org", "secret1")
	_, errMissing := store.Login(ctx, "nobody@example.org", "secret1")

	assert.ErrorIs(t, errPending, registrationstore.ErrAccountPending)
	assert.ErrorIs(t, errRejected, registrationstore.ErrAccountRejected)
	assert.ErrorIs(t, errMissing, registrationstore.ErrAccountNotFound)
	assert.NotEqual(t, errPending.Error(), errRejected.Error())
	assert.NotEqual(t, errPending.Error(), errMissing.Error())
	assert.NotEqual(t, errRejected.Error(), errMissing.Error())

	got, err := store.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestSetStatus_FreeTransitions(t *testing.T) {
	store, db, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg, err := store.Submit(ctx, testutil.ValidRegistration("free@example.org"))
	require.NoError(t, err)

	require.NoError(t, store.SetStatus(ctx, reg.ID, models.StatusRejected))
	require.NoError(t, store.SetStatus(ctx, reg.ID, models.StatusApproved))
	assert.EqualValues(t, 1, count(t, db, "members", bson.M{}))
	require.NoError(t, store.SetStatus(ctx, reg.ID, models.StatusPending))

	got, err := store.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	var fe schema.FieldErrors
	assert.True(t, errors.As(store.SetStatus(ctx, reg.ID, "archived"), &fe))
	assert.ErrorIs(t, store.SetStatus(ctx, primitive.NewObjectID(), models.StatusRejected), registrationstore.ErrNotFound)
}

func TestList_FilterAndOrder(t *testing.T) {
	store, _, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Submit(ctx, testutil.ValidRegistration("first@example.org"))
	require.NoError(t, err)
	second, err := store.Submit(ctx, testutil.ValidRegistration("second@example.org"))
	require.NoError(t, err)
	require.NoError(t, store.Reject(ctx, first.ID))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	pending, err := store.List(ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	_, err = store.List(ctx, "bogus")
	assert.Error(t, err)
}

func TestUpdateProfile_RestrictedMerge(t *testing.T) {
	store, _, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reg, err := store.Submit(ctx, testutil.ValidRegistration("profile@example.org"))
	require.NoError(t, err)

	out, err := store.UpdateProfile(ctx, reg.ID, models.ProfileUpdate{
		Contact: "+1 555 010 0199",
		Website: "https://ada.example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "+1 555 010 0199", out.Contact)
	assert.Equal(t, "https://ada.example.org", out.Website)
	assert.Equal(t, reg.Name, out.Name)
	assert.Equal(t, reg.Email, out.Email)
	assert.Equal(t, models.StatusPending, out.Status)

	_, err = store.UpdateProfile(ctx, reg.ID, models.ProfileUpdate{Website: "nope"})
	var fe schema.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "website")

	_, err = store.UpdateProfile(ctx, primitive.NewObjectID(), models.ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, registrationstore.ErrNotFound)
}
