package auth

import "time"

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithPassword sets the admin password.
func WithPassword(password string) Option {
	return func(g *Gate) {
		g.password = password
	}
}

// WithSessionTTL sets how long a session stays valid.
func WithSessionTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(g *Gate) {
		if name != "" {
			g.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(g *Gate) {
		g.secure = secure
	}
}

// WithSessionStore replaces the default session store.
func WithSessionStore(s SessionStore) Option {
	return func(g *Gate) {
		if s != nil {
			g.sessions = s
		}
	}
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// SessionOption applies a configuration option to the session store.
type SessionOption func(*inMemorySessions)

// WithMaxSessions bounds the number of live sessions. maxSize <= 0 means
// unbounded.
func WithMaxSessions(maxSize int) SessionOption {
	return func(s *inMemorySessions) {
		s.maxSize = maxSize
	}
}
