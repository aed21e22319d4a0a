package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/medilens/backend/internal/domain"
)

// SessionCart is the cart of one session. Lines are keyed by product name
// and written through to a CartStore on Persist.
type SessionCart struct {
	mu        sync.Mutex
	sessionID string
	lines     []domain.CartLine
	store     domain.CartStore
}

// Load restores the cart of sessionID from store
func Load(ctx context.Context, sessionID string, store domain.CartStore) (*SessionCart, error) {
	lines, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}
	return &SessionCart{
		sessionID: sessionID,
		lines:     lines,
		store:     store,
	}, nil
}

// AddOrIncrement adds quantity to the line named name, appending a new line
// when the cart has none.
func (c *SessionCart) AddOrIncrement(name string, price float64, image string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Name == name {
			c.lines[i].Quantity += quantity
			return
		}
	}

	c.lines = append(c.lines, domain.CartLine{
		Name:     name,
		Price:    price,
		Image:    image,
		Quantity: quantity,
	})
}

// Withdraw removes quantity units from the line named name and drops the
// line once its quantity reaches zero. Unknown names are ignored.
func (c *SessionCart) Withdraw(name string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Name != name {
			continue
		}
		c.lines[i].Quantity -= quantity
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Persist writes the current lines to the store
func (c *SessionCart) Persist(ctx context.Context) error {
	return c.store.Save(ctx, c.sessionID, c.Lines())
}

// BadgeCount returns the total number of units in the cart
func (c *SessionCart) BadgeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order
func (c *SessionCart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartLine{}, c.lines...)
}

// MemoryStore keeps carts in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartLine
}

// NewMemoryStore creates an empty in-memory cart store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]domain.CartLine)}
}

// Load returns a copy of the stored lines for sessionID
func (s *MemoryStore) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartLine{}, s.carts[sessionID]...), nil
}

// Save replaces the stored lines for sessionID
func (s *MemoryStore) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = append([]domain.CartLine{}, lines...)
	return nil
}
