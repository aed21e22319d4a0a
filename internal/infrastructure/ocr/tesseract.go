package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/infrastructure/imageprep"
)

// Config is passed through to the Tesseract engine
type Config struct {
	Language    string
	Whitelist   string
	PageSegMode int
	Timeout     time.Duration
	Preprocess  imageprep.Options
}

// TesseractExtractor recognizes prescription text with Tesseract via gosseract.
// Each call owns its engine client and temporary image and releases both on
// every exit path. At most one recognition runs at a time, including one
// whose caller has already given up on it.
type TesseractExtractor struct {
	cfg       Config
	logger    *zap.Logger
	recognize func(image []byte) (string, error)

	// engine holds a token while a recognition runs; only the recognizing
	// goroutine takes it back
	engine chan struct{}
}

// NewTesseractExtractor creates an extractor with the given engine configuration
func NewTesseractExtractor(cfg Config, logger *zap.Logger) *TesseractExtractor {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &TesseractExtractor{cfg: cfg, logger: logger, engine: make(chan struct{}, 1)}
	e.recognize = e.tesseract
	return e
}

type recognition struct {
	text string
	err  error
}

// ExtractText runs OCR on image. Engine failures and timeouts are reported
// as domain.ErrOCREngine; the caller is expected not to retry.
func (e *TesseractExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	select {
	case e.engine <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: engine still busy: %v", domain.ErrOCREngine, ctx.Err())
	}

	start := time.Now()
	done := make(chan recognition, 1)
	go func() {
		defer func() { <-e.engine }()
		text, err := e.recognize(image)
		done <- recognition{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrOCREngine, r.err)
		}
		e.logger.Debug("ocr complete",
			zap.Int("chars", len(r.text)),
			zap.Duration("took", time.Since(start)),
		)
		return r.text, nil
	case <-ctx.Done():
		// The engine goroutine finishes on its own, releases its resources
		// and frees the engine for the next call.
		return "", fmt.Errorf("%w: recognition aborted: %v", domain.ErrOCREngine, ctx.Err())
	}
}

// tesseract preprocesses the image to a temporary file and runs the engine on it
func (e *TesseractExtractor) tesseract(image []byte) (string, error) {
	path, cleanup, err := imageprep.WriteTemp(image, e.cfg.Preprocess)
	if err != nil {
		return "", err
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if e.cfg.Whitelist != "" {
		if err := client.SetWhitelist(e.cfg.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(e.cfg.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

// Unavailable is the extractor used when OCR is disabled by configuration.
// It always fails with domain.ErrOCREngine.
type Unavailable struct{}

// ExtractText always returns domain.ErrOCREngine
func (Unavailable) ExtractText(ctx context.Context, image []byte) (string, error) {
	return "", fmt.Errorf("%w: OCR is disabled on this server", domain.ErrOCREngine)
}
