package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is an 8-bit, row-major pixel buffer with 1 (gray) or 3 (RGB)
// interleaved channels.
//
// Every pipeline stage treats its input Raster as read-only and returns a new
// one; no stage mutates a Raster it did not allocate.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, channels int) *Raster {
	if channels != 1 && channels != 3 {
		panic(fmt.Sprintf("imaging: unsupported channel count %d", channels))
	}
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Stride returns the number of bytes per row.
func (r *Raster) Stride() int {
	return r.Width * r.Channels
}

// At returns sample c of pixel (x, y). No bounds checking is performed.
func (r *Raster) At(x, y, c int) uint8 {
	return r.Pix[(y*r.Width+x)*r.Channels+c]
}

// Set stores sample c of pixel (x, y). No bounds checking is performed.
func (r *Raster) Set(x, y, c int, v uint8) {
	r.Pix[(y*r.Width+x)*r.Channels+c] = v
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out := &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels}
	out.Pix = make([]uint8, len(r.Pix))
	copy(out.Pix, r.Pix)
	return out
}

// FromImage converts any image.Image to a 3-channel raster. Alpha is dropped
// after compositing onto black, which is what an opaque decode produces.
func FromImage(img image.Image) *Raster {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	out := NewRaster(b.Dx(), b.Dy(), 3)

	for y := 0; y < out.Height; y++ {
		srcRow := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+out.Width*4]
		dstRow := out.Pix[y*out.Stride() : (y+1)*out.Stride()]
		for x := 0; x < out.Width; x++ {
			a := uint32(srcRow[x*4+3])
			if a == 255 {
				dstRow[x*3] = srcRow[x*4]
				dstRow[x*3+1] = srcRow[x*4+1]
				dstRow[x*3+2] = srcRow[x*4+2]
				continue
			}
			dstRow[x*3] = uint8(uint32(srcRow[x*4]) * a / 255)
			dstRow[x*3+1] = uint8(uint32(srcRow[x*4+1]) * a / 255)
			dstRow[x*3+2] = uint8(uint32(srcRow[x*4+2]) * a / 255)
		}
	}
	return out
}

// Image returns the raster as a standard library image: *image.Gray for one
// channel and *image.NRGBA (fully opaque) for three.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g
	}

	img := image.NewNRGBA(rect)
	for i, j := 0, 0; i < len(r.Pix); i, j = i+3, j+4 {
		img.Pix[j] = r.Pix[i]
		img.Pix[j+1] = r.Pix[i+1]
		img.Pix[j+2] = r.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// Filled returns a raster of the given shape with every pixel set to c.
func Filled(width, height, channels int, c color.RGBA) *Raster {
	out := NewRaster(width, height, channels)
	if channels == 1 {
		v := uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B) + 500) / 1000)
		for i := range out.Pix {
			out.Pix[i] = v
		}
		return out
	}
	for i := 0; i < len(out.Pix); i += 3 {
		out.Pix[i] = c.R
		out.Pix[i+1] = c.G
		out.Pix[i+2] = c.B
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for replicated-border handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// reflect101 maps an out-of-range index into [0, n) by mirroring about the
// edge pixels without repeating them (…cb|abcd|cb…).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func roundToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
