package form

import (
	"errors"
	"fmt"
	"time"

	"donatrack/internal/cache"
	"donatrack/internal/core"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("form session not found")

// Session is an open form bound to a record kind.
type Session struct {
	ID   string
	Kind core.Kind
	*Form
}

// Sessions keeps open forms between requests. Idle sessions expire.
type Sessions struct {
	forms *cache.LRUCache[*Session]
	newID func() string
}

const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 30 * time.Minute
)

func NewSessions(maxSessions int, ttl time.Duration) *Sessions {
	return &Sessions{
		forms: cache.NewLRUCache[*Session](maxSessions, ttl, cache.WithSlidingExpiry()),
		newID: uuid.NewString,
	}
}

// Cache exposes the backing cache so it can be swept by a cache.Manager.
func (s *Sessions) Cache() cache.Cleaner {
	return s.forms
}

// Open starts a session on the built-in schema of kind.
func (s *Sessions) Open(kind core.Kind, initial Values) (*Session, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	f := New(schema)
	if err := f.Open(initial); err != nil {
		return nil, err
	}
	sess := &Session{ID: s.newID(), Kind: kind, Form: f}
	s.forms.Set(sess.ID, sess)
	return sess, nil
}

func (s *Sessions) Get(id string) (*Session, error) {
	sess, ok := s.forms.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Discard closes and forgets the session.
func (s *Sessions) Discard(id string) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.Close()
	s.forms.Delete(id)
	return nil
}

func (s *Sessions) Len() int {
	return s.forms.Size()
}
