// Package identity keeps the visitor's session identifier in the page's
// persistent store.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vincentbai/browsetrace-tracker/internal/storage"
)

const (
	SessionKey = "dns_session_id"
	DefaultTTL = 24 * time.Hour
)

type Store struct {
	store storage.Store
	ttl   time.Duration
	// sliding, when positive, re-writes the entry on every read with this TTL.
	sliding time.Duration
	random  io.Reader
	logger  *log.Logger
}

type Option func(*Store)

// WithTTL sets the expiry written with a freshly created identifier.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithSlidingExpiry renews the stored identifier for timeout on every access.
func WithSlidingExpiry(timeout time.Duration) Option {
	return func(s *Store) { s.sliding = timeout }
}

func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.random = r }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(store storage.Store, opts ...Option) *Store {
	s := &Store{
		store:  store,
		ttl:    DefaultTTL,
		random: rand.Reader,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateSessionID returns the stored identifier, creating and persisting
// a new one when none is stored. Storage failures are logged and degrade to a
// fresh identifier for this call.
func (s *Store) GetOrCreateSessionID(ctx context.Context) string {
	id, err := s.store.Get(ctx, SessionKey)
	switch {
	case err == nil && id != "":
		if s.sliding > 0 {
			if err := s.store.Set(ctx, SessionKey, id, s.sliding); err != nil {
				s.logger.Printf("identity: renew session id: %v", err)
			}
		}
		return id
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		s.logger.Printf("identity: read session id: %v", err)
	}

	id = s.newID()
	if err := s.store.Set(ctx, SessionKey, id, s.ttl); err != nil {
		s.logger.Printf("identity: persist session id: %v", err)
	}
	return id
}

func (s *Store) newID() string {
	u, err := uuid.NewRandomFromReader(s.random)
	if err != nil {
		// A short read from a custom source still needs a usable token.
		return uuid.New().String()
	}
	return u.String()
}
