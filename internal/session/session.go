package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// TokenKey is the fixed storage key for the bearer token.
const TokenKey = "innovo_auth_token"

var ErrEmptyToken = errors.New("session: empty token")

// State is a snapshot of a session. IsAuthenticated is always derived from
// Token.
type State struct {
	Token           string
	IsAuthenticated bool
}

func stateOf(token string) State {
	return State{Token: token, IsAuthenticated: token != ""}
}

// Listener receives every state change synchronously.
type Listener func(State)

// Session holds the bearer token of one viewer and persists it through a
// TokenStore. Login and Logout are the only mutators.
type Session struct {
	store TokenStore
	key   string

	mu        sync.RWMutex
	token     string
	listeners map[int]Listener
	nextID    int
}

// New creates an anonymous session bound to key in store. Call Load to
// hydrate it from storage.
func New(store TokenStore, key string) *Session {
	return &Session{
		store:     store,
		key:       key,
		listeners: make(map[int]Listener),
	}
}

// Key is the storage key this session persists under.
func (s *Session) Key() string { return s.key }

// Load reads the token from storage. A missing token leaves the session
// anonymous and is not an error. Subscribers are not notified.
func (s *Session) Load(ctx context.Context) error {
	tok, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ErrNoToken) {
		tok, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stateOf(s.token)
}

// Token returns the current bearer token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// Login persists token and marks the session authenticated. The in-memory
// state changes even when the store write fails; the write error is
// returned so the caller can log it.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	storeErr := s.store.Set(ctx, s.key, token)

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.notify()

	if storeErr != nil {
		return fmt.Errorf("persist token: %w", storeErr)
	}
	return nil
}

// Logout removes the token from storage and marks the session anonymous.
func (s *Session) Logout(ctx context.Context) error {
	storeErr := s.store.Delete(ctx, s.key)

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.notify()

	if storeErr != nil {
		return fmt.Errorf("remove token: %w", storeErr)
	}
	return nil
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify runs listeners in subscription order, outside the lock so they may
// read the session.
func (s *Session) notify() {
	s.mu.RLock()
	st := stateOf(s.token)
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make(map[int]Listener, len(s.listeners))
	for id, fn := range s.listeners {
		fns[id] = fn
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		fns[id](st)
	}
}
