package contact

import (
	"context"
	"sync"
	"time"

	"github.com/Zachkp/portfolio/internal/logger"
)

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions keeps one Controller per visitor so each browser gets its own
// form lifetime. Entries idle longer than the TTL are dropped by Sweep,
// except while a send is in flight.
type Sessions struct {
	newController func() *Controller
	ttl           time.Duration
	now           func() time.Time

	mu      sync.Mutex
	entries map[string]*session
}

// NewSessions returns a registry building controllers with newController.
func NewSessions(ttl time.Duration, newController func() *Controller) *Sessions {
	return &Sessions{
		newController: newController,
		ttl:           ttl,
		now:           time.Now,
		entries:       make(map[string]*session),
	}
}

// Get returns the controller for id, creating it on first use.
func (s *Sessions) Get(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.lastSeen = s.now()
		return e.ctrl
	}
	ctrl := s.newController()
	s.entries[id] = &session{ctrl: ctrl, lastSeen: s.now()}
	return ctrl
}

// View returns the controller for id when one exists. Otherwise it returns a
// fresh controller that is not registered, so read-only callers never grow
// the registry.
func (s *Sessions) View(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.lastSeen = s.now()
		return e.ctrl
	}
	return s.newController()
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) && !e.ctrl.Status().Sending() {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.GetLogger().Debugw("Swept idle contact sessions", "removed", n)
			}
		}
	}
}
