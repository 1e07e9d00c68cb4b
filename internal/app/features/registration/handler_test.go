package registration_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/aiesociety/aiesweb/internal/app/features/errors"
	"github.com/aiesociety/aiesweb/internal/app/features/registration"
	registrationstore "github.com/aiesociety/aiesweb/internal/app/store/registrations"
	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/aiesociety/aiesweb/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	h  *registration.Handler
	sm *auth.SessionManager
	f  *testutil.Fixtures
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := registrationstore.New(registrationstore.Deps{DB: db, Log: zap.NewNop(), HashCost: bcrypt.MinCost})
	sm := testutil.NewSessionManager(t)
	return fixture{
		h:  registration.NewHandler(store, sm, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop()),
		sm: sm,
		f:  testutil.NewFixtures(t, db),
	}
}

func (fx fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r := chi.NewRouter()
	registration.MountRoutes(r, fx.h, fx.sm)
	r.ServeHTTP(rec, req)
	return rec
}

func (fx fixture) registration(t *testing.T, email, status string) models.Registration {
	t.Helper()
	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	return fx.f.CreateRegistration(ctx, email, status, hash)
}

func TestSubmit_CreatesPendingRegistration(t *testing.T) {
	fx := setup(t)

	rec := fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/registrations", testutil.ValidRegistration("ada@example.org")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	testutil.DecodeEnvelope(t, rec).DecodeData(t, &got)
	assert.Equal(t, models.StatusPending, got["status"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "passwordHash")

	// Same email with different case is a duplicate.
	rec = fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/registrations", testutil.ValidRegistration("ADA@example.org")))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	fx := setup(t)
	in := testutil.ValidRegistration("bad")
	in.Password = "123"

	rec := fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/registrations", in))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := testutil.DecodeEnvelope(t, rec)
	assert.Contains(t, env.Fields, "email")
	assert.Contains(t, env.Fields, "password")
}

func TestLogin_DistinctDenials(t *testing.T) {
	fx := setup(t)
	fx.registration(t, "pending@example.org", models.StatusPending)
	fx.registration(t, "rejected@example.org", models.StatusRejected)
	fx.registration(t, "ok@example.org", models.StatusApproved)

	cases := []struct {
		email, password string
		status          int
		msg             string
	}{
		{"nobody@example.org", "secret1", http.StatusUnauthorized, registrationstore.ErrAccountNotFound.Error()},
		{"ok@example.org", "wrong-pass", http.StatusUnauthorized, registrationstore.ErrInvalidCredentials.Error()},
		{"pending@example.org", "secret1", http.StatusForbidden, registrationstore.ErrAccountPending.Error()},
		{"rejected@example.org", "secret1", http.StatusForbidden, registrationstore.ErrAccountRejected.Error()},
	}
	for _, tc := range cases {
		rec := fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/member/login", map[string]string{
			"email": tc.email, "password": tc.password,
		}))
		assert.Equal(t, tc.status, rec.Code, tc.email)
		assert.Equal(t, tc.msg, testutil.DecodeEnvelope(t, rec).Error, tc.email)
		assert.Nil(t, testutil.SessionCookie(rec, "aies-test"), tc.email)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	fx := setup(t)
	rec := fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/member/login", map[string]string{}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := testutil.DecodeEnvelope(t, rec)
	assert.Contains(t, env.Fields, "email")
	assert.Contains(t, env.Fields, "password")
}

func TestLogin_ApprovedIssuesSession(t *testing.T) {
	fx := setup(t)
	reg := fx.registration(t, "ok@example.org", models.StatusApproved)

	rec := fx.serve(testutil.NewJSONRequest(t, http.MethodPost, "/member/login", map[string]string{
		"email": "OK@example.org", "password": "secret1",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, testutil.SessionCookie(rec, "aies-test"))

	var s auth.Session
	testutil.DecodeEnvelope(t, rec).DecodeData(t, &s)
	assert.Equal(t, reg.ID.Hex(), s.Subject)
	assert.Equal(t, auth.RoleMember, s.Role)
	assert.True(t, s.ExpiresAt.After(s.IssuedAt))
}

func TestProfile_RequiresMemberSession(t *testing.T) {
	fx := setup(t)

	rec := fx.serve(httptest.NewRequest(http.MethodGet, "/member/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = fx.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/member/profile", testutil.AdminSession()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProfile_GetAndUpdate(t *testing.T) {
	fx := setup(t)
	reg := fx.registration(t, "ok@example.org", models.StatusApproved)
	sess := testutil.MemberSession(reg.ID)

	rec := fx.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/member/profile", sess))
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Registration
	testutil.DecodeEnvelope(t, rec).DecodeData(t, &got)
	assert.Equal(t, "ok@example.org", got.Email)

	req := testutil.NewJSONRequest(t, http.MethodPut, "/member/profile", models.ProfileUpdate{Contact: "+1 555 0100"})
	rec = fx.serve(req.WithContext(auth.WithSession(req, sess).Context()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	testutil.DecodeEnvelope(t, rec).DecodeData(t, &got)
	assert.Equal(t, "+1 555 0100", got.Contact)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestProfile_UnknownRegistration(t *testing.T) {
	fx := setup(t)
	rec := fx.serve(testutil.NewAuthenticatedRequest(http.MethodGet, "/member/profile", testutil.MemberSession(primitive.NewObjectID())))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
