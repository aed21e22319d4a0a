// Package imageprep normalizes prescription photos before OCR.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// ErrUndecodable is returned when the input is not a supported image
var ErrUndecodable = errors.New("image could not be decoded")

// Options controls preprocessing
type Options struct {
	// MinHeight upscales shorter images so small print survives recognition
	MinHeight int
	Contrast  float64
	Sharpen   float64
}

// DefaultOptions mirrors what works for phone photos of printed prescriptions
func DefaultOptions() Options {
	return Options{
		MinHeight: 1000,
		Contrast:  15,
		Sharpen:   0.7,
	}
}

// Process decodes data and returns a grayscale, contrast-adjusted, sharpened
// image, upscaled to MinHeight when shorter.
func Process(data []byte, opts Options) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	out := imaging.Grayscale(img)
	if opts.Contrast != 0 {
		out = imaging.AdjustContrast(out, opts.Contrast)
	}
	if opts.Sharpen > 0 {
		out = imaging.Sharpen(out, opts.Sharpen)
	}
	if opts.MinHeight > 0 && out.Bounds().Dy() < opts.MinHeight {
		out = imaging.Resize(out, 0, opts.MinHeight, imaging.Lanczos)
	}
	return out, nil
}

// WriteTemp processes data and saves the result as a temporary PNG.
// The caller must invoke cleanup once the file is no longer needed;
// cleanup is safe to call more than once.
func WriteTemp(data []byte, opts Options) (path string, cleanup func(), err error) {
	img, err := Process(data, opts)
	if err != nil {
		return "", func() {}, err
	}

	tmp, err := os.CreateTemp("", "rx-ocr-*.png")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp image: %w", err)
	}
	path = tmp.Name()
	_ = tmp.Close()
	cleanup = func() { _ = os.Remove(path) }

	if err := imaging.Save(img, path); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("save temp image: %w", err)
	}
	return path, cleanup, nil
}
