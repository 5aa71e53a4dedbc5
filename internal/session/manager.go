package session

import (
	"context"

	"github.com/google/uuid"
)

// ChangeFunc observes state changes of every session a Manager opens.
type ChangeFunc func(sid string, st State)

// Manager opens per-viewer sessions on a shared store. The web console keys
// each browser by an opaque session id kept in a cookie.
type Manager struct {
	store    TokenStore
	onChange []ChangeFunc
}

func NewManager(store TokenStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Store() TokenStore { return m.store }

// OnChange registers fn on every session opened afterwards.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.onChange = append(m.onChange, fn)
}

// Open hydrates the session for sid.
func (m *Manager) Open(ctx context.Context, sid string) (*Session, error) {
	s := New(m.store, KeyFor(sid))
	for _, fn := range m.onChange {
		fn := fn
		s.Subscribe(func(st State) { fn(sid, st) })
	}
	if err := s.Load(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// KeyFor is the storage key of a browser session. An empty sid maps to the
// bare TokenKey used by single-user front ends.
func KeyFor(sid string) string {
	if sid == "" {
		return TokenKey
	}
	return TokenKey + ":" + sid
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether sid looks like an id produced by NewID.
func ValidID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}
