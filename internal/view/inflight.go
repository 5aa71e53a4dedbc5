// Package view holds helpers shared by the console's screens.
package view

import (
	"errors"
	"sync"
)

// ErrSubmitting is returned when a form is submitted again while the
// previous submission is still running.
var ErrSubmitting = errors.New("a submission is already in progress")

// InFlight tracks which keys (one per viewer and form) have a submission
// running. It backs the disabled submit buttons.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

// Begin marks key busy. The returned func clears it and must be deferred.
func (f *InFlight) Begin(key string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[key]; busy {
		return nil, ErrSubmitting
	}
	f.active[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.active, key)
		f.mu.Unlock()
	}, nil
}

// Busy reports whether key has a submission running.
func (f *InFlight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.active[key]
	return busy
}
