package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medilens/backend/internal/domain"
)

// Analysis outcomes reported to the observer
const (
	OutcomeMatched      = "matched"
	OutcomeUnmatched    = "unmatched"
	OutcomeNoCandidates = "no_candidates"
	OutcomeOCRError     = "ocr_error"
	OutcomeCatalogError = "catalog_error"
	OutcomeRejected     = "rejected"
)

// AnalysisService runs the prescription pipeline for a single session:
// OCR -> candidate extraction -> product resolution. It owns the analysis
// state machine and admits one analysis at a time.
type AnalysisService struct {
	extractor domain.TextExtractor
	patterns  domain.PatternCatalog
	resolver  *ProductResolver
	observer  domain.AnalysisObserver
	logger    *zap.Logger

	mu    sync.Mutex
	state domain.AnalysisState
}

// NewAnalysisService creates a pipeline controller with its collaborators
func NewAnalysisService(
	extractor domain.TextExtractor,
	patterns domain.PatternCatalog,
	catalog domain.ProductCatalog,
	observer domain.AnalysisObserver,
	logger *zap.Logger,
) *AnalysisService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnalysisService{
		extractor: extractor,
		patterns:  patterns,
		resolver:  NewProductResolver(catalog, patterns),
		observer:  observer,
		logger:    logger,
		state:     domain.StateIdle,
	}
}

// State returns the current analysis state
func (s *AnalysisService) State() domain.AnalysisState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns a finished or failed controller to Idle.
// It is a no-op while an analysis is running.
func (s *AnalysisService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Busy() {
		s.state = domain.StateIdle
	}
}

// Analyze runs the full pipeline on a prescription image.
// Returns ErrAnalysisInProgress without side effects if an analysis is running.
func (s *AnalysisService) Analyze(ctx context.Context, image []byte) (*domain.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}
	if !s.begin(domain.StateExtracting) {
		s.observer.ObserveAnalysis(OutcomeRejected, 0, 0)
		return nil, domain.ErrAnalysisInProgress
	}

	start := time.Now()
	text, err := s.extractor.ExtractText(ctx, image)
	if err != nil {
		if !errors.Is(err, domain.ErrOCREngine) {
			err = fmt.Errorf("%w: %v", domain.ErrOCREngine, err)
		}
		s.fail(OutcomeOCRError, start, err)
		return nil, err
	}

	return s.run(ctx, text, start)
}

// AnalyzeText runs the pipeline on text that was already recognized,
// skipping the OCR stage.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string) (*domain.AnalysisResult, error) {
	if !s.begin(domain.StateScanning) {
		s.observer.ObserveAnalysis(OutcomeRejected, 0, 0)
		return nil, domain.ErrAnalysisInProgress
	}
	return s.run(ctx, text, time.Now())
}

// run executes the scanning and resolving stages. Partial results are
// discarded when a stage fails.
func (s *AnalysisService) run(ctx context.Context, text string, start time.Time) (*domain.AnalysisResult, error) {
	s.setState(domain.StateScanning)
	candidates := ExtractCandidates(text, s.patterns)

	result := &domain.AnalysisResult{
		ID:                  uuid.NewString(),
		ResolvedMatches:     []domain.ResolvedMatch{},
		UnmatchedCandidates: []domain.Candidate{},
		DetectedLines:       splitLines(text),
	}

	s.logger.Debug("candidates extracted",
		zap.String("analysis_id", result.ID),
		zap.Int("lines", len(result.DetectedLines)),
		zap.Int("candidates", len(candidates)),
	)

	s.setState(domain.StateResolving)
	for _, candidate := range candidates {
		match, err := s.resolver.Resolve(ctx, candidate)
		if err != nil {
			s.fail(OutcomeCatalogError, start, err)
			return nil, err
		}

		if match.BestMatch == nil {
			result.UnmatchedCandidates = append(result.UnmatchedCandidates, candidate)
			continue
		}
		result.ResolvedMatches = append(result.ResolvedMatches, match)
	}

	s.setState(domain.StateDone)

	outcome := OutcomeMatched
	switch {
	case len(candidates) == 0:
		outcome = OutcomeNoCandidates
	case len(result.ResolvedMatches) == 0:
		outcome = OutcomeUnmatched
	}
	s.observer.ObserveAnalysis(outcome, len(candidates), time.Since(start))

	s.logger.Info("analysis complete",
		zap.String("analysis_id", result.ID),
		zap.String("outcome", outcome),
		zap.Int("resolved", len(result.ResolvedMatches)),
		zap.Int("unmatched", len(result.UnmatchedCandidates)),
		zap.Duration("took", time.Since(start)),
	)

	return result, nil
}

// begin moves the controller into its first running state unless an
// analysis is already in flight.
func (s *AnalysisService) begin(state domain.AnalysisState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy() {
		return false
	}
	s.state = state
	return true
}

func (s *AnalysisService) setState(state domain.AnalysisState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *AnalysisService) fail(outcome string, start time.Time, err error) {
	s.setState(domain.StateFailed)
	s.observer.ObserveAnalysis(outcome, 0, time.Since(start))
	s.logger.Warn("analysis failed", zap.String("outcome", outcome), zap.Error(err))
}

type noopObserver struct{}

func (noopObserver) ObserveAnalysis(string, int, time.Duration) {}

func (noopObserver) ObserveCartAdd(string) {}
