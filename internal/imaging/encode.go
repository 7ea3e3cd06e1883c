package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when a caller passes a quality outside 1..100.
const DefaultJPEGQuality = 95

// EncodedImage is an image serialized for transport in a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeJPEG writes r as a baseline JPEG.
func EncodeJPEG(w io.Writer, r *Raster, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, r.Image(), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return nil
}

// EncodePNG writes r as a PNG.
func EncodePNG(w io.Writer, r *Raster) error {
	if err := imaging.Encode(w, r.Image(), imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// JPEGBytes returns r encoded as a JPEG in memory.
func JPEGBytes(r *Raster, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, r, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveJPEG writes r to path as a JPEG, creating parent directories as needed.
func SaveJPEG(path string, r *Raster, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := EncodeJPEG(f, r, quality); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// EncodeBase64 serializes img as a base64 PNG, first shrinking it to fit
// within maxDim x maxDim when maxDim > 0. Aspect ratio is preserved and
// images already small enough are left untouched.
func EncodeBase64(img image.Image, maxDim int) (*EncodedImage, error) {
	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeRasterBase64 is EncodeBase64 for a Raster.
func EncodeRasterBase64(r *Raster, maxDim int) (*EncodedImage, error) {
	return EncodeBase64(r.Image(), maxDim)
}
