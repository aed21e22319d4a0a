package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/medilens/backend/internal/domain"
)

// stubCatalog is a ProductCatalog backed by a query -> products table
type stubCatalog struct {
	mu      sync.Mutex
	results map[string][]domain.Product
	byID    map[string]domain.Product
	err     error
	queries []string

	// block, when set, holds Search until it is closed
	block   chan struct{}
	entered chan struct{}
}

func (s *stubCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.block != nil {
		if s.entered != nil {
			s.entered <- struct{}{}
		}
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (s *stubCatalog) seenQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.queries...)
}

// stubExtractor returns canned OCR text and counts calls
type stubExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int

	block   chan struct{}
	entered chan struct{}
}

func (s *stubExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block != nil {
		s.entered <- struct{}{}
		<-s.block
	}
	return s.text, s.err
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingObserver keeps every reported outcome
type recordingObserver struct {
	mu       sync.Mutex
	analyses []string
	cartAdds []string
}

func (r *recordingObserver) ObserveAnalysis(outcome string, candidates int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, outcome)
}

func (r *recordingObserver) ObserveCartAdd(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cartAdds = append(r.cartAdds, outcome)
}

func (r *recordingObserver) analysisOutcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.analyses...)
}

// failingStore is a CartStore whose writes always fail
type failingStore struct {
	err error
}

func (f failingStore) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	return []domain.CartLine{}, nil
}

func (f failingStore) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	return f.err
}
