package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SessionStore tracks issued admin session tokens.
type SessionStore interface {
	// Issue records token as valid until expires.
	Issue(ctx context.Context, token string, expires time.Time)

	// Valid reports whether token was issued and has not expired at now.
	// Expired tokens are removed on lookup.
	Valid(ctx context.Context, token string, now time.Time) bool

	// Revoke forgets token. Unknown tokens are ignored.
	Revoke(ctx context.Context, token string)

	Size() int64
}

// node is one session in the store's linked list, newest first.
type node struct {
	token   string
	expires time.Time
	next    *node
}

func (n *node) reset() {
	n.token = ""
	n.expires = time.Time{}
	n.next = nil
}

// inMemorySessions keeps sessions in a map plus a newest-first linked list.
// When maxSize > 0 the oldest session is evicted to make room; maxSize <= 0
// means unbounded.
type inMemorySessions struct {
	mu       sync.Mutex
	byToken  map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewSessionStore creates an in-memory session store.
func NewSessionStore(opts ...SessionOption) SessionStore {
	s := &inMemorySessions{
		maxSize: defaultMaxSessions,
		byToken: make(map[string]*node),
		nodePool: sync.Pool{
			New: func() any { return &node{} },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *inMemorySessions) Issue(_ context.Context, token string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, exists := s.byToken[token]; exists {
		n.expires = expires
		return
	}
	if s.maxSize > 0 && len(s.byToken) >= s.maxSize {
		s.evictOldest()
	}

	n := s.nodePool.Get().(*node)
	n.token = token
	n.expires = expires
	n.next = s.head
	s.head = n
	s.byToken[token] = n
	s.size.Add(1)
}

func (s *inMemorySessions) Valid(_ context.Context, token string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, exists := s.byToken[token]
	if !exists {
		return false
	}
	if !now.Before(n.expires) {
		s.remove(n)
		return false
	}
	return true
}

func (s *inMemorySessions) Revoke(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, exists := s.byToken[token]; exists {
		s.remove(n)
	}
}

func (s *inMemorySessions) Size() int64 {
	return s.size.Load()
}

// remove unlinks n. Must be called with s.mu held.
func (s *inMemorySessions) remove(target *node) {
	delete(s.byToken, target.token)
	if s.head == target {
		s.head = target.next
	} else {
		current := s.head
		for current != nil && current.next != target {
			current = current.next
		}
		if current != nil {
			current.next = target.next
		}
	}
	target.reset()
	s.nodePool.Put(target)
	s.size.Add(-1)
}

// evictOldest drops the tail of the list. Must be called with s.mu held.
func (s *inMemorySessions) evictOldest() {
	if s.head == nil {
		return
	}
	tail := s.head
	for tail.next != nil {
		tail = tail.next
	}
	s.remove(tail)
}
