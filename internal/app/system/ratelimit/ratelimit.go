// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aiesociety/aiesweb/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/text"
	gocache "github.com/patrickmn/go-cache"
)

// Errors returned by LoginLimiter.Check.
var (
	ErrTooManyFromIP     = apperr.New(apperr.TooManyRequests, "too many sign-in attempts, please wait a minute and try again")
	ErrTooManyForAccount = apperr.New(apperr.TooManyRequests, "too many sign-in attempts for this account, please wait a few minutes")
)

// Limiter counts requests per key in fixed windows. The first request for a
// key opens a window of the configured duration; once limit requests have
// been counted, further requests are refused until the window expires.
// It is safe for concurrent use.
type Limiter struct {
	c     *gocache.Cache
	limit int
	ttl   time.Duration
}

// New creates a limiter allowing limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		c:     gocache.New(duration, 2*duration),
		limit: limit,
		ttl:   duration,
	}
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if l.c.Add(key, 1, l.ttl) == nil {
		return true
	}
	n, err := l.c.IncrementInt(key, 1)
	if err != nil {
		// The window expired between Add and IncrementInt.
		l.c.Set(key, 1, l.ttl)
		return true
	}
	return n <= l.limit
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	v, ok := l.c.Get(key)
	if !ok {
		return l.limit
	}
	if left := l.limit - v.(int); left > 0 {
		return left
	}
	return 0
}

// Reset clears the window of key.
func (l *Limiter) Reset(key string) {
	l.c.Delete(key)
}

// ClientIP returns the client address of r, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts per client IP and per account
// email, so neither a single client nor a spread of clients can guess
// passwords for one account quickly.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, emailLimit int, emailDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:    New(ipLimit, ipDuration),
		email: New(emailLimit, emailDuration),
	}
}

// Check counts one attempt and returns ErrTooManyFromIP or
// ErrTooManyForAccount when a limit is exceeded. A nil LoginLimiter allows
// everything.
func (ll *LoginLimiter) Check(r *http.Request, email string) error {
	if ll == nil {
		return nil
	}
	if !ll.ip.Allow(ClientIP(r)) {
		return ErrTooManyFromIP
	}
	if key := emailKey(email); key != "" && !ll.email.Allow(key) {
		return ErrTooManyForAccount
	}
	return nil
}

// Succeeded clears the account window after a successful sign-in.
func (ll *LoginLimiter) Succeeded(email string) {
	if ll == nil {
		return
	}
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

func emailKey(email string) string {
	return text.Fold(strings.TrimSpace(email))
}
