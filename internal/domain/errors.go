package domain

import "errors"

var (
	// ErrOCREngine is returned when the OCR engine cannot initialize or fails mid-recognition
	ErrOCREngine = errors.New("OCR engine failure")

	// ErrProductNotFound is returned when a product id is not present in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrAnalysisInProgress is returned when an analysis is requested while another one is running
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogFailure is returned when the product catalog backend fails
	ErrCatalogFailure = errors.New("product catalog request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCartPersist is returned when the cart cannot be written to its store
	ErrCartPersist = errors.New("cart could not be persisted")
)

// UserError carries a message that is safe to show to the end user
// alongside the underlying error.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}
