package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminSession returns a live administrator session.
func AdminSession() *auth.Session {
	now := time.Now().UTC()
	return &auth.Session{
		Subject:   "admin@aies.test",
		Role:      auth.RoleAdmin,
		Name:      "Test Admin",
		Email:     "admin@aies.test",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

// MemberSession returns a live member session for the given registration id.
func MemberSession(registrationID primitive.ObjectID) *auth.Session {
	now := time.Now().UTC()
	return &auth.Session{
		Subject:   registrationID.Hex(),
		Role:      auth.RoleMember,
		Name:      "Test Member",
		Email:     "member@aies.test",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a request with s in context.
func NewAuthenticatedRequest(method, target string, s *auth.Session) *http.Request {
	return auth.WithSession(httptest.NewRequest(method, target, nil), s)
}

// Envelope mirrors the JSON body written by the API.
type Envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

// DecodeEnvelope parses rec's body, failing t on malformed JSON.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return env
}

// DecodeData unmarshals the envelope's data into dst.
func (e Envelope) DecodeData(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", e.Data, err)
	}
}

// NewSessionManager returns a session manager with a fixed key and a
// one-hour lifetime.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "aies-test", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return sm
}

// SessionCookie returns the session cookie set on rec, or nil.
func SessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
