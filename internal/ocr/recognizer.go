package ocr

import (
	"context"
	"fmt"
	"strings"
)

// NoTextDetected is returned as the text of a page on which a backend
// recognized nothing.
const NoTextDetected = "No text detected"

// Backend names accepted by NewRecognizer.
const (
	BackendTesseract = "tesseract"
	BackendVision    = "vision"
	BackendNone      = "none"
)

// Recognizer turns an encoded page image into text.
//
// Implementations must be safe for concurrent use; the batch driver calls
// Recognize from several workers at once.
type Recognizer interface {
	// Recognize returns the text found in img (JPEG or PNG bytes).
	Recognize(ctx context.Context, img []byte) (string, error)

	// Name identifies the backend in logs and reports.
	Name() string
}

// NewRecognizer builds the backend named by backend.
//
// Parameters:
//   - backend: "tesseract", "vision" or "none". Empty means "tesseract".
//   - language: Tesseract language code (e.g., "eng"); ignored by Vision.
//   - apiKey: Vision API key; ignored by Tesseract.
//
// Returns:
//   - Recognizer: nil (with a nil error) for "none".
//   - error: Non-nil for an unknown backend, or for "vision" without a key.
func NewRecognizer(backend, language, apiKey string) (Recognizer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendTesseract:
		return NewTesseract(language), nil
	case BackendVision:
		if apiKey == "" {
			return nil, fmt.Errorf("vision backend requires an API key (set GOOGLE_API_KEY)")
		}
		return NewVision(apiKey), nil
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown OCR backend %q", backend)
	}
}

// orNoText substitutes NoTextDetected for blank recognition output.
func orNoText(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoTextDetected
	}
	return text
}
