package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a recognized word with its location and confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is Tesseract's confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the page image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from a page.
type OCRResult struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words with their bounding boxes.
	// May be empty if bounding box extraction fails (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// Tesseract recognizes text locally with the Tesseract engine.
//
// Each call creates its own gosseract client, so a single Tesseract value can
// be shared between goroutines.
type Tesseract struct {
	Language string
}

// NewTesseract returns a Tesseract backend for language, defaulting to
// DefaultLanguage.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{Language: language}
}

// Name implements Recognizer.
func (t *Tesseract) Name() string { return BackendTesseract }

// Recognize implements Recognizer. The context is checked before the engine
// starts; Tesseract itself cannot be interrupted.
func (t *Tesseract) Recognize(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result, err := ExtractText(img, t.Language)
	if err != nil {
		return "", err
	}
	return orNoText(result.FullText), nil
}

// ExtractText performs OCR on an encoded image and returns the recognized
// text together with word-level bounding boxes.
//
// Parameters:
//   - img: Encoded image bytes (PNG, JPEG, TIFF or BMP).
//   - language: Tesseract language code (e.g., "eng"). The corresponding
//     language data must be installed on the system.
//
// Returns:
//   - *OCRResult: FullText plus Regions (words with bounding boxes and
//     confidence). Empty words are dropped.
//   - error: Non-nil if the image cannot be read or OCR fails.
//
// If word-level bounding box extraction fails the full text is still
// returned, with an empty Regions slice.
func ExtractText(img []byte, language string) (*OCRResult, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &OCRResult{FullText: text, Regions: regions}, nil
}

// TesseractVersion returns the linked Tesseract version.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
