package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Roles & session token                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	subjectKey = "sub"
	roleKey    = "role"
	nameKey    = "name"
	emailKey   = "email"
	issuedKey  = "iat"
	expiresKey = "exp"
)

// Session is the signed token carried in the session cookie. For members
// Subject is the registration id; for the administrator it is the
// configured admin email.
type Session struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsValid reports whether s is a complete token that is live at now:
// IssuedAt <= now < ExpiresAt.
func IsValid(s *Session, now time.Time) bool {
	if s == nil || s.Subject == "" || s.Role == "" {
		return false
	}
	if s.IssuedAt.IsZero() || !s.ExpiresAt.After(s.IssuedAt) {
		return false
	}
	return !now.Before(s.IssuedAt) && now.Before(s.ExpiresAt)
}

type ctxKey string

const currentSessionKey ctxKey = "currentSession"

// CurrentSession returns the session placed in context by LoadSession.
func CurrentSession(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(currentSessionKey).(*Session)
	return s, ok
}

// WithSession returns r carrying s, bypassing the cookie. Handler tests use it.
func WithSession(r *http.Request, s *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentSessionKey, s))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager issues and verifies session tokens stored in a signed and
// encrypted cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionManager builds a cookie-backed SessionManager. An empty key
// generates a random one, so sessions do not survive a restart.
//
// In production (secure=true) cookies are Secure + SameSite=None; in local
// dev over http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if name == "" {
		return nil, errors.New("session name is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}

	hashKey := []byte(sessionKey)
	if sessionKey == "" {
		hashKey = securecookie.GenerateRandomKey(64)
		logger.Warn("session key not configured; generated an ephemeral key")
	} else if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	blockKey := sha256.Sum256(hashKey)

	store := sessions.NewCookieStore(hashKey, blockKey[:])
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Duration("ttl", ttl),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store: store,
		name:  name,
		ttl:   ttl,
		log:   logger,
		now:   time.Now,
	}, nil
}

// TTL is the lifetime given to issued sessions.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue stamps s with IssuedAt/ExpiresAt and writes it to the cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, s Session) (*Session, error) {
	now := m.now().UTC()
	s.IssuedAt = now
	s.ExpiresAt = now.Add(m.ttl)

	sess, _ := m.store.Get(r, m.name)
	sess.Values[subjectKey] = s.Subject
	sess.Values[roleKey] = s.Role
	sess.Values[nameKey] = s.Name
	sess.Values[emailKey] = s.Email
	sess.Values[issuedKey] = s.IssuedAt.Unix()
	sess.Values[expiresKey] = s.ExpiresAt.Unix()
	if err := sess.Save(r, w); err != nil {
		return nil, err
	}
	return &s, nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// read decodes the token from the cookie. A missing, tampered or expired
// token yields nil.
func (m *SessionManager) read(r *http.Request) *Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return nil
	}
	s := &Session{
		Subject:   getString(sess, subjectKey),
		Role:      getString(sess, roleKey),
		Name:      getString(sess, nameKey),
		Email:     getString(sess, emailKey),
		IssuedAt:  getUnix(sess, issuedKey),
		ExpiresAt: getUnix(sess, expiresKey),
	}
	if !IsValid(s, m.now()) {
		return nil
	}
	return s
}

// LoadSession injects a valid session into the request context.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := m.read(r); s != nil {
			r = WithSession(r, s)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures a session is in context (set by LoadSession).
// Browsers are redirected to /login?return=...; API callers get a 401.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures a session with one of the allowed roles.
func (m *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := CurrentSession(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			if _, has := set[strings.ToLower(s.Role)]; !has {
				m.log.Info("role denied",
					zap.String("role", s.Role),
					zap.String("path", r.URL.Path))
				writeDenied(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func unauthorized(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		ret := url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	writeDenied(w, http.StatusUnauthorized, "unauthorized")
}

func writeDenied(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func getUnix(s *sessions.Session, key string) time.Time {
	if v, ok := s.Values[key].(int64); ok {
		return time.Unix(v, 0).UTC()
	}
	return time.Time{}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
