package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

// createPatternRaster builds a 3-channel raster with four colored quadrants:
// red top-left, green top-right, blue bottom-left, white bottom-right.
func createPatternRaster(width, height int) *Raster {
	r := NewRaster(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			r.Set(x, y, 0, c.R)
			r.Set(x, y, 1, c.G)
			r.Set(x, y, 2, c.B)
		}
	}
	return r
}

func sameShape(a, b *Raster) bool {
	return a.Width == b.Width && a.Height == b.Height && a.Channels == b.Channels
}

func TestRaster_ImageRoundTrip(t *testing.T) {
	src := createPatternRaster(40, 30)
	back := FromImage(src.Image())
	if !sameShape(back, src) {
		t.Fatalf("shape changed: %dx%dx%d", back.Width, back.Height, back.Channels)
	}
	if !bytes.Equal(back.Pix, src.Pix) {
		t.Error("pixels changed through Image/FromImage")
	}
}

func TestRaster_GrayImage(t *testing.T) {
	src := NewRaster(5, 4, 1)
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 10)
	}
	g, ok := src.Image().(*image.Gray)
	if !ok {
		t.Fatalf("1-channel Image() returned %T, want *image.Gray", src.Image())
	}
	if !bytes.Equal(g.Pix, src.Pix) {
		t.Error("gray image pixels differ from the raster")
	}

	// Decoding normalizes to three equal channels.
	back := FromImage(g)
	if back.Channels != 3 || back.At(3, 2, 0) != src.Pix[2*5+3] || back.At(3, 2, 2) != src.Pix[2*5+3] {
		t.Errorf("FromImage(gray) at (3,2): got %d/%d, want %d", back.At(3, 2, 0), back.At(3, 2, 2), src.Pix[13])
	}
}

func TestFromImage_CompositesAlphaOnBlack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 255})
	img.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 0})

	r := FromImage(img)
	if r.At(0, 0, 0) != 200 || r.At(0, 0, 1) != 100 || r.At(0, 0, 2) != 50 {
		t.Errorf("opaque pixel altered: (%d,%d,%d)", r.At(0, 0, 0), r.At(0, 0, 1), r.At(0, 0, 2))
	}
	if r.At(1, 0, 0) != 0 || r.At(1, 0, 1) != 0 || r.At(1, 0, 2) != 0 {
		t.Errorf("transparent pixel should be black, got (%d,%d,%d)", r.At(1, 0, 0), r.At(1, 0, 1), r.At(1, 0, 2))
	}
}

func TestRaster_CloneIsIndependent(t *testing.T) {
	src := Filled(3, 3, 3, color.RGBA{1, 2, 3, 255})
	c := src.Clone()
	c.Set(0, 0, 0, 99)
	if src.At(0, 0, 0) != 1 {
		t.Error("modifying clone changed the source")
	}
}

func TestNewRaster_RejectsBadChannelCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRaster(…, 4) should panic")
		}
	}()
	NewRaster(2, 2, 4)
}

func TestReflect101(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{-1, 5, 1},
		{-2, 5, 2},
		{5, 5, 3},
		{6, 5, 2},
		{-3, 1, 0},
		{7, 3, 1},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	src := createPatternRaster(64, 48)
	data, err := JPEGBytes(src, 90)
	if err != nil {
		t.Fatalf("JPEGBytes failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("decoded size %v, want 64x48", img.Bounds())
	}
}

func TestEncodePNG_Lossless(t *testing.T) {
	src := createPatternRaster(20, 10)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	back, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if !bytes.Equal(back.Pix, src.Pix) {
		t.Error("PNG round trip changed pixels")
	}
}

func TestEncodeRasterBase64(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"no limit", 100, 50, 0, 100, 50},
		{"already small", 100, 50, 200, 100, 50},
		{"shrinks landscape", 200, 100, 100, 100, 50},
		{"shrinks portrait", 60, 120, 60, 30, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := EncodeRasterBase64(createPatternRaster(tt.w, tt.h), tt.maxDim)
			if err != nil {
				t.Fatalf("EncodeRasterBase64 failed: %v", err)
			}
			if res.Width != tt.wantW || res.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", res.Width, res.Height, tt.wantW, tt.wantH)
			}
			if res.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", res.MimeType)
			}
			decoded, err := base64.StdEncoding.DecodeString(res.ImageBase64)
			if err != nil {
				t.Fatalf("failed to decode base64: %v", err)
			}
			if _, err := png.Decode(strings.NewReader(string(decoded))); err != nil {
				t.Errorf("payload is not a PNG: %v", err)
			}
		})
	}
}

func TestSaveJPEG_CreatesDirectories(t *testing.T) {
	path := t.TempDir() + "/nested/out/page_processed.jpg"
	if err := SaveJPEG(path, createPatternRaster(16, 16), 0); err != nil {
		t.Fatalf("SaveJPEG failed: %v", err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if r.Width != 16 || r.Height != 16 {
		t.Errorf("size: got %dx%d, want 16x16", r.Width, r.Height)
	}
}
