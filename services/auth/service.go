// Package auth owns the access/refresh token lifecycle. One Service instance
// exists per process; other components read the access token through its
// accessors and never touch the pair directly.
//
// A refresh is a shared resource: concurrent local callers wait on a queue
// for the single in-flight attempt, and peer instances are told over the
// broadcast bus so only one of them performs the network call. Durable
// storage is the fallback source of truth for environments without a bus.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"streamglass/internal/broadcast"
	"streamglass/internal/kvstore"
	"streamglass/internal/waitqueue"
	"streamglass/models"
)

const (
	storageKey = "session.tokens"

	// maxStartupJitter desynchronizes instances that were restarted
	// together, so they do not all race into the same refresh.
	maxStartupJitter = 500 * time.Millisecond
)

var (
	ErrAccessTokenMissing = errors.New("access token missing")

	// errPeerRefreshFailed settles local waiters when another instance
	// reported a failed refresh.
	errPeerRefreshFailed = errors.New("token refresh failed in peer instance")
)

// Service coordinates token storage, expiry-driven refresh, and cross-
// instance refresh deduplication.
type Service struct {
	store     kvstore.Store
	bus       *broadcast.Bus
	refresher Refresher

	sandbox bool
	logout  func()

	mu         sync.Mutex
	tokens     *models.Tokens
	refreshing bool

	queue *waitqueue.Queue[models.Tokens]
	sub   *broadcast.Subscription
	now   func() time.Time

	listenerDone chan struct{}
}

// NewService creates an uninitialized token service. Call Initialize before
// first use.
func NewService(store kvstore.Store, bus *broadcast.Bus, refresher Refresher) *Service {
	return &Service{
		store:     store,
		bus:       bus,
		refresher: refresher,
		queue:     waitqueue.New[models.Tokens](),
		now:       time.Now,
	}
}

// Initialize restores any persisted session, attaches to the broadcast bus,
// and refreshes the access token if it is already stale. The logout delegate
// is invoked only when the server authoritatively rejects the refresh token.
// In sandbox builds a small random delay desynchronizes instances that were
// reloaded simultaneously.
func (s *Service) Initialize(ctx context.Context, sandbox bool, logout func()) error {
	s.sandbox = sandbox
	s.logout = logout

	s.restore()

	s.sub = s.bus.Subscribe()
	s.listenerDone = make(chan struct{})
	go s.listen()

	if sandbox {
		select {
		case <-time.After(time.Duration(rand.Int63n(int64(maxStartupJitter)))):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := s.MaybeRefreshAccessToken(ctx); err != nil {
		log.Printf("[auth] startup token refresh failed: %v", err)
	}
	return nil
}

// Close detaches from the broadcast bus.
func (s *Service) Close() {
	if s.sub == nil {
		return
	}
	s.sub.Close()
	<-s.listenerDone
}

// GetAccessToken ensures freshness and returns the current access token, or
// an empty string when there is no session. Durable storage is re-read as a
// fallback sync path for environments without cross-instance messaging.
func (s *Service) GetAccessToken(ctx context.Context) string {
	if err := s.MaybeRefreshAccessToken(ctx); err != nil {
		log.Printf("[auth] token refresh failed: %v", err)
	}

	s.syncFromStorage()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.AccessToken
}

// GetAccessTokenOrErr is GetAccessToken for call sites that cannot proceed
// unauthenticated.
func (s *Service) GetAccessTokenOrErr(ctx context.Context) (string, error) {
	token := s.GetAccessToken(ctx)
	if token == "" {
		return "", ErrAccessTokenMissing
	}
	return token, nil
}

// SetTokens installs a new token pair, typically after login or
// registration, and persists it.
func (s *Service) SetTokens(tokens models.Tokens) {
	s.mu.Lock()
	s.tokens = &tokens
	s.mu.Unlock()

	s.persist(tokens)
}

// ClearSession drops the token pair from memory and storage. The logout
// delegate is not invoked; this is the delegate's own hand-off point.
func (s *Service) ClearSession() {
	s.mu.Lock()
	s.tokens = nil
	s.mu.Unlock()

	if err := s.store.RemoveItem(storageKey); err != nil {
		log.Printf("[auth] failed to clear stored session: %v", err)
	}
}

// MaybeRefreshAccessToken refreshes the access token when it is expired. If
// a refresh is already in flight, locally or in a peer instance, the caller
// joins the waiter queue instead of starting a duplicate; every waiter is
// settled exactly once when the attempt resolves.
func (s *Service) MaybeRefreshAccessToken(ctx context.Context) error {
	s.mu.Lock()

	if s.refreshing {
		// Enqueue before releasing the lock so the settle cannot slip in
		// between and strand this caller.
		waiter := s.queue.Enqueue()
		s.mu.Unlock()
		_, err := waiter.Wait(ctx)
		return err
	}

	if s.tokens == nil || !s.expiredLocked() {
		s.mu.Unlock()
		return nil
	}

	s.refreshing = true
	refreshToken := s.tokens.RefreshToken
	s.mu.Unlock()

	return s.refresh(ctx, refreshToken)
}

// refresh performs the network exchange and settles peers and local waiters
// with the outcome. Tokens end up either fully replaced or fully cleared,
// never partially updated.
func (s *Service) refresh(ctx context.Context, refreshToken string) error {
	s.sub.Publish(models.TokenMessage{Action: models.TokenActionRefreshing})

	tokens, err := s.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		log.Printf("[auth] token refresh failed: %v", err)

		s.mu.Lock()
		s.tokens = nil
		s.refreshing = false
		s.mu.Unlock()

		if rmErr := s.store.RemoveItem(storageKey); rmErr != nil {
			log.Printf("[auth] failed to clear stored session: %v", rmErr)
		}

		s.sub.Publish(models.TokenMessage{Action: models.TokenActionRejected})
		s.queue.RejectAll(err)

		if errors.Is(err, ErrRefreshTokenRejected) && s.logout != nil {
			s.logout()
		}
		return err
	}

	s.mu.Lock()
	s.tokens = &tokens
	s.refreshing = false
	s.mu.Unlock()

	s.persist(tokens)

	s.sub.Publish(models.TokenMessage{Action: models.TokenActionResolved, Tokens: &tokens})
	s.queue.ResolveAll(tokens)
	return nil
}

// listen applies peer refresh state: a peer's "refreshing" makes local
// callers queue instead of racing, and its outcome settles them. The queue
// also settles on the local fetch's own completion, so a peer that never
// reports back cannot strand local waiters forever.
func (s *Service) listen() {
	defer close(s.listenerDone)

	for msg := range s.sub.C() {
		switch msg.Action {
		case models.TokenActionRefreshing:
			s.mu.Lock()
			s.refreshing = true
			s.mu.Unlock()

		case models.TokenActionResolved:
			s.mu.Lock()
			if msg.Tokens != nil {
				tokens := *msg.Tokens
				s.tokens = &tokens
			}
			s.refreshing = false
			s.mu.Unlock()
			if msg.Tokens != nil {
				s.queue.ResolveAll(*msg.Tokens)
			}

		case models.TokenActionRejected:
			s.mu.Lock()
			s.tokens = nil
			s.refreshing = false
			s.mu.Unlock()
			s.queue.RejectAll(errPeerRefreshFailed)
		}
	}
}

// expiredLocked reports whether the current access token is past its exp
// claim. A token whose expiration cannot be decoded is treated as not
// expired; refusing to refresh an opaque token beats a spurious logout loop.
func (s *Service) expiredLocked() bool {
	expiration := decodeExpiration(s.tokens.AccessToken)
	return expiration > -1 && s.now().UnixMilli() >= expiration
}

// syncFromStorage adopts the stored token pair when present. Storage is the
// cross-instance source of truth for environments where broadcast messages
// never arrive.
func (s *Service) syncFromStorage() {
	data, err := s.store.GetItem(storageKey)
	if err != nil {
		return
	}

	var tokens models.Tokens
	if err := json.Unmarshal(data, &tokens); err != nil || tokens.AccessToken == "" {
		return
	}

	s.mu.Lock()
	s.tokens = &tokens
	s.mu.Unlock()
}

// restore loads a persisted session at startup. Read and parse errors are
// swallowed, leaving no session.
func (s *Service) restore() {
	data, err := s.store.GetItem(storageKey)
	if err != nil {
		return
	}

	var tokens models.Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		log.Printf("[auth] ignoring unreadable stored session: %v", err)
		return
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return
	}

	s.mu.Lock()
	s.tokens = &tokens
	s.mu.Unlock()
}

func (s *Service) persist(tokens models.Tokens) {
	data, err := json.Marshal(tokens)
	if err != nil {
		log.Printf("[auth] failed to encode session: %v", err)
		return
	}
	if err := s.store.SetItem(storageKey, data); err != nil {
		log.Printf("[auth] failed to persist session: %v", err)
	}
}
