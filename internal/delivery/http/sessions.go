package http

import (
	"context"
	"sync"
	"time"

	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/infrastructure/cart"
	"github.com/medilens/backend/internal/usecase"
)

// Session holds the per-session pipeline controller and cart
type Session struct {
	ID       string
	Analysis *usecase.AnalysisService
	Cart     *cart.SessionCart
	lastSeen time.Time
}

// SessionRegistry creates sessions on first use and keeps them until swept
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	newAnalysis func() *usecase.AnalysisService
	store       domain.CartStore
	now         func() time.Time
}

// NewSessionRegistry creates a registry. newAnalysis is called once per session.
func NewSessionRegistry(newAnalysis func() *usecase.AnalysisService, store domain.CartStore) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]*Session),
		newAnalysis: newAnalysis,
		store:       store,
		now:         time.Now,
	}
}

// Get returns the session for id, creating it and restoring its cart when absent.
// The cart is loaded without holding the registry lock; when two requests
// race to create the same session the first one stored wins.
func (r *SessionRegistry) Get(ctx context.Context, id string) (*Session, error) {
	if s := r.lookup(id); s != nil {
		return s, nil
	}

	sessionCart, err := cart.Load(ctx, id, r.store)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s, nil
	}

	s := &Session{
		ID:       id,
		Analysis: r.newAnalysis(),
		Cart:     sessionCart,
		lastSeen: r.now(),
	}
	r.sessions[id] = s
	return s, nil
}

func (r *SessionRegistry) lookup(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = r.now()
	return s
}

// Sweep drops sessions idle for longer than maxIdle that are not analyzing.
// Carts stay in the store and are restored on the next request.
func (r *SessionRegistry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) && !s.Analysis.State().Busy() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
