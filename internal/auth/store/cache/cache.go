// Package cache decorates a store.Store with an in-process read cache for
// access tokens. Only the root Tokens().Get path is cached. Revocations
// through the decorated store leave a tombstone that Get consults before
// anything else, so this process never serves a token it has revoked.
//
// The cache is per process. Replicas sharing a database do not see each
// other's revocations until the cached entry expires, which is why it is
// disabled by default.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/dgraph-io/ristretto/v2"
)

// Config sizes the cache.
type Config struct {
	// MaxEntries bounds the number of cached tokens.
	MaxEntries int64

	// MaxLifetime is the longest lifetime a token can be issued with. It
	// bounds how long a tombstone for an uncached token must be kept.
	MaxLifetime time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Store is a store.Store whose Tokens() are cached.
type Store struct {
	store.Store
	tokens *tokens
}

var _ store.Store = (*Store)(nil)

// New wraps inner.
func New(inner store.Store, cfg Config) (*Store, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100_000
	}
	if cfg.MaxLifetime <= 0 {
		cfg.MaxLifetime = 240 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, domain.Token]{
		NumCounters:        cfg.MaxEntries * 10,
		MaxCost:            cfg.MaxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: init: %w", err)
	}

	return &Store{
		Store: inner,
		tokens: &tokens{
			inner:      inner.Tokens(),
			cache:      c,
			cfg:        cfg,
			tombstones: make(map[string]time.Time),
		},
	}, nil
}

func (s *Store) Tokens() store.Tokens { return s.tokens }

// Prune drops tombstones that can no longer shadow a cached entry and
// returns how many were removed.
func (s *Store) Prune(now time.Time) int {
	return s.tokens.prune(now)
}

func (s *Store) Close() error {
	s.tokens.cache.Close()
	return s.Store.Close()
}

type tokens struct {
	inner store.Tokens
	cache *ristretto.Cache[string, domain.Token]
	cfg   Config

	mu         sync.RWMutex
	tombstones map[string]time.Time // token id -> keep until
}

func (t *tokens) Put(ctx context.Context, tok domain.Token) error {
	return t.inner.Put(ctx, tok)
}

func (t *tokens) Get(ctx context.Context, id string, now time.Time) (domain.Token, error) {
	if t.revoked(id) {
		return domain.Token{}, store.ErrNotFound
	}

	if tok, ok := t.cache.Get(id); ok {
		if tok.ExpiredAt(now) {
			t.cache.Del(id)
			return domain.Token{}, store.ErrNotFound
		}
		return tok.Clone(), nil
	}

	tok, err := t.inner.Get(ctx, id, now)
	if err != nil {
		return domain.Token{}, err
	}

	if ttl := tok.ExpiresAt.Sub(now); ttl > 0 {
		t.cache.SetWithTTL(id, tok.Clone(), 1, ttl)
		t.cache.Wait()
	}
	return tok, nil
}

func (t *tokens) Delete(ctx context.Context, id string) error {
	until := t.cfg.Now().Add(t.cfg.MaxLifetime)
	tok, cached := t.cache.Get(id)
	if cached {
		until = tok.ExpiresAt
	}

	t.mu.Lock()
	_, existed := t.tombstones[id]
	t.tombstones[id] = until
	t.mu.Unlock()

	t.cache.Del(id)
	err := t.inner.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) && !cached && !existed {
		// Nothing to hide: the id was neither cached nor stored.
		t.mu.Lock()
		delete(t.tombstones, id)
		t.mu.Unlock()
	}
	return err
}

func (t *tokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return t.inner.DeleteExpired(ctx, now)
}

func (t *tokens) revoked(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tombstones[id]
	return ok
}

func (t *tokens) prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, until := range t.tombstones {
		if !now.Before(until) {
			delete(t.tombstones, id)
			n++
		}
	}
	return n
}
