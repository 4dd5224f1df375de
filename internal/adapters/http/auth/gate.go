// Package auth is the admin auth gate: password login issuing a short-lived
// session cookie, and the checks admin routes run before acting.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/okian/storefront/pkg/metrics"
)

// Default gate configuration constants.
const (
	defaultCookieName  = "storefront_admin"
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1000
)

// Login outcomes reported to metrics.
const (
	loginAccepted = "accepted"
	loginRejected = "rejected"
	loginDisabled = "disabled"
)

// Gate decides whether a request carries a live admin session.
type Gate struct {
	password   string
	cookieName string
	ttl        time.Duration
	secure     bool
	sessions   SessionStore
	now        func() time.Time
}

// NewGate creates a gate. Without WithPassword every login is refused.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		cookieName: defaultCookieName,
		ttl:        defaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sessions == nil {
		g.sessions = NewSessionStore()
	}
	return g
}

// TTL returns how long an issued session stays valid.
func (g *Gate) TTL() time.Duration { return g.ttl }

// CheckPassword compares candidate with the configured password in constant
// time.
func (g *Gate) CheckPassword(candidate string) bool {
	if g.password == "" {
		metrics.RecordAdminLogin(loginDisabled)
		return false
	}
	ok := subtle.ConstantTimeCompare([]byte(candidate), []byte(g.password)) == 1
	if ok {
		metrics.RecordAdminLogin(loginAccepted)
	} else {
		metrics.RecordAdminLogin(loginRejected)
	}
	return ok
}

// IsAuthenticated reports whether r carries a live session cookie.
func (g *Gate) IsAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(g.cookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return g.sessions.Valid(r.Context(), c.Value, g.now())
}

// Authenticate starts a new session and sets its cookie on w.
func (g *Gate) Authenticate(ctx context.Context, w http.ResponseWriter) error {
	token, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	expires := g.now().Add(g.ttl)
	g.sessions.Issue(ctx, token.String(), expires)
	metrics.UpdateAdminSessions(int(g.sessions.Size()))

	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    token.String(),
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearAuth revokes the session on r, if any, and expires its cookie.
func (g *Gate) ClearAuth(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(g.cookieName); err == nil {
		g.sessions.Revoke(r.Context(), c.Value)
		metrics.UpdateAdminSessions(int(g.sessions.Size()))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require runs next only for authenticated requests; others go to denied.
func (g *Gate) Require(next, denied http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAuthenticated(r) {
			denied.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sessions returns the number of tracked sessions.
func (g *Gate) Sessions() int64 { return g.sessions.Size() }
