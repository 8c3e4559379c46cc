// Package inflight prevents a second run of the same action while the first
// one is still running. It does not queue or deduplicate: the second caller
// simply fails with ErrInProgress.
package inflight

import (
	"errors"
	"sync"
)

// ErrInProgress is returned by Do when key is already running.
var ErrInProgress = errors.New("operation already in progress")

type Guard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func New() *Guard {
	return &Guard{running: make(map[string]struct{})}
}

// TryAcquire marks key as running. The returned release func must be called
// exactly once; ok is false when key is already running.
func (g *Guard) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[key]; busy {
		return nil, false
	}
	g.running[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, key)
			g.mu.Unlock()
		})
	}, true
}

// Do runs fn unless key is already running.
func (g *Guard) Do(key string, fn func() error) error {
	release, ok := g.TryAcquire(key)
	if !ok {
		return ErrInProgress
	}
	defer release()
	return fn()
}

// Busy reports whether key is running.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[key]
	return busy
}
