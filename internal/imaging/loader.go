package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ErrDecode is returned when input bytes are not a decodable raster image.
var ErrDecode = errors.New("image decode failed")

// SupportedExtensions lists the lower-case file extensions accepted as page
// photographs.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// IsSupported reports whether path has one of SupportedExtensions
// (case-insensitive).
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads an encoded image and returns it as a 3-channel raster.
//
// EXIF orientation is honored, so a portrait phone photo stored sideways
// decodes upright. Any failure wraps ErrDecode.
func Decode(r io.Reader) (*Raster, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return FromImage(img), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*Raster, error) {
	return Decode(bytes.NewReader(data))
}

// ImageCache provides thread-safe caching of decoded rasters keyed by path.
//
// Cached rasters remain in memory until removed via Evict(). The
// MCP server keeps one for its lifetime; batch runs never cache because each
// file is read exactly once.
//
// Callers must treat returned rasters as read-only, since the same value is
// handed to every caller that loads the path.
type ImageCache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewImageCache creates an empty cache ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		rasters: make(map[string]*Raster),
	}
}

// Load returns the cached raster for path, decoding it from disk on first use.
//
// The cache key is the exact path string, so relative and absolute spellings
// of the same file are cached separately.
func (c *ImageCache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Evict removes the raster cached for path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// LoadFile opens and decodes a single image file without caching.
func LoadFile(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	r, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return r, nil
}

// ImageInfo contains metadata about a loaded page photograph.
type ImageInfo struct {
	// Width is the image width in pixels after EXIF orientation.
	Width int `json:"width"`

	// Height is the image height in pixels after EXIF orientation.
	Height int `json:"height"`

	// Format is derived from the file extension: "jpeg", "png", "bmp",
	// "tiff", or "unknown".
	Format string `json:"format"`

	// Channels is the channel count of the decoded raster (always 3).
	Channels int `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	r, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	}

	return &ImageInfo{
		Width:         r.Width,
		Height:        r.Height,
		Format:        format,
		Channels:      r.Channels,
		FileSizeBytes: stat.Size(),
	}, nil
}
