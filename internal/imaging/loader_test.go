package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// createTestImage writes a solid-color image into dir using the encoder
// implied by name's extension and returns its path.
func createTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save %s: %v", name, err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, t.TempDir(), "red.png", 100, 80, color.RGBA{255, 0, 0, 255})

	r1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r1.Width != 100 || r1.Height != 80 || r1.Channels != 3 {
		t.Errorf("unexpected shape: got %dx%dx%d, want 100x80x3", r1.Width, r1.Height, r1.Channels)
	}
	if r1.At(10, 10, 0) != 255 || r1.At(10, 10, 1) != 0 || r1.At(10, 10, 2) != 0 {
		t.Errorf("pixel (10,10): got (%d,%d,%d), want (255,0,0)", r1.At(10, 10, 0), r1.At(10, 10, 1), r1.At(10, 10, 2))
	}

	r2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if r1 != r2 {
		t.Error("second Load did not return cached raster")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()
	a := createTestImage(t, dir, "a.png", 20, 20, color.RGBA{0, 255, 0, 255})
	b := createTestImage(t, dir, "b.png", 20, 20, color.RGBA{0, 0, 255, 255})

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	cache.mu.RLock()
	_, exists := cache.rasters[a]
	cache.mu.RUnlock()
	if exists {
		t.Error("Evict did not remove raster from cache")
	}
	if cache.Len() != 1 {
		t.Errorf("Len after Evict: got %d, want 1", cache.Len())
	}

	// Evicting an unknown path is a no-op.
	cache.Evict("/nonexistent/path")
	if cache.Len() != 1 {
		t.Errorf("Len after no-op Evict: got %d, want 1", cache.Len())
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, t.TempDir(), "gray.png", 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestDecode_Formats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page.png", "page.jpg", "page.bmp", "page.tif"} {
		t.Run(name, func(t *testing.T) {
			path := createTestImage(t, dir, name, 32, 24, color.RGBA{200, 200, 200, 255})
			r, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if r.Width != 32 || r.Height != 24 || r.Channels != 3 {
				t.Errorf("shape: got %dx%dx%d, want 32x24x3", r.Width, r.Height, r.Channels)
			}
		})
	}
}

func TestDecode_GrayscaleNormalizedToThreeChannels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range g.Pix {
		g.Pix[i] = 77
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		t.Fatal(err)
	}

	r, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if r.Channels != 3 {
		t.Fatalf("Channels: got %d, want 3", r.Channels)
	}
	if r.At(3, 3, 0) != 77 || r.At(3, 3, 1) != 77 || r.At(3, 3, 2) != 77 {
		t.Errorf("pixel: got (%d,%d,%d), want (77,77,77)", r.At(3, 3, 0), r.At(3, 3, 1), r.At(3, 3, 2))
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, err := DecodeBytes([]byte{0x00, 0x01, 0x02})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, t.TempDir(), "info.png", 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.Channels != 3 {
		t.Errorf("Channels: got %d, want 3", info.Channels)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()

	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".JPEG", "jpeg"},
		{".bmp", "bmp"},
		{".tiff", "tiff"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// A valid PNG regardless of extension; decoding sniffs content.
			path := filepath.Join(dir, "format"+tt.ext)
			f, err := os.Create(path)
			if err != nil {
				t.Fatalf("failed to create file: %v", err)
			}
			png.Encode(f, image.NewRGBA(image.Rect(0, 0, 10, 10)))
			f.Close()

			info, err := LoadImageInfo(cache, path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPG", true},
		{"dir/b.jpeg", true},
		{"c.png", true},
		{"d.bmp", true},
		{"e.tif", true},
		{"f.TIFF", true},
		{"g.gif", false},
		{"h.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsSupported(tt.path); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
