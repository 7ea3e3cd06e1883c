package imaging

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/convolution"
)

// SharpenVariant selects one of the fixed 3x3 sharpening kernels.
type SharpenVariant int

const (
	// SharpenLegibility is a gentle kernel (center 5, neighbours -0.5) that
	// crisps stroke edges without ringing that would confuse text
	// recognition.
	SharpenLegibility SharpenVariant = iota

	// SharpenVisual is a stronger kernel (center 9, neighbours -1) for
	// human-facing output.
	SharpenVisual
)

// sharpenWeights maps each variant to its (center, neighbour) weights. Every
// kernel sums to 1 so flat regions pass through unchanged.
var sharpenWeights = map[SharpenVariant]struct{ center, neighbour float64 }{
	SharpenLegibility: {5, -0.5},
	SharpenVisual:     {9, -1},
}

// String returns the variant's configuration name.
func (v SharpenVariant) String() string {
	switch v {
	case SharpenLegibility:
		return "legibility"
	case SharpenVisual:
		return "visual"
	default:
		return fmt.Sprintf("SharpenVariant(%d)", int(v))
	}
}

// ParseSharpenVariant accepts "legibility" or "visual" (case-insensitive).
func ParseSharpenVariant(s string) (SharpenVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legibility", "":
		return SharpenLegibility, nil
	case "visual":
		return SharpenVisual, nil
	default:
		return 0, fmt.Errorf("unknown sharpen variant %q (want legibility or visual)", s)
	}
}

// Kernel returns the variant's 3x3 convolution kernel.
func (v SharpenVariant) Kernel() *convolution.Kernel {
	w, ok := sharpenWeights[v]
	if !ok {
		w = sharpenWeights[SharpenLegibility]
	}
	k := convolution.NewKernel(3, 3)
	for i := range k.Matrix {
		k.Matrix[i] = w.neighbour
	}
	k.Matrix[4] = w.center
	return k
}

// Sharpen convolves src with the variant's kernel. The output has the same
// dimensions and channel count as src.
//
// Borders are reflected without repeating the edge pixel (reflect-101) and
// each result is rounded half-up before saturating to 0..255.
func Sharpen(src *Raster, v SharpenVariant) *Raster {
	if src.Width == 0 || src.Height == 0 {
		return src.Clone()
	}

	// bild replicates edge pixels and truncates; a one-pixel reflect-101
	// margin and a 0.5 bias give reflected borders and rounding instead.
	padded := padReflect101(src, 1)
	res := convolution.Convolve(padded.Image(), v.Kernel(), &convolution.Options{
		Bias:      0.5,
		Wrap:      false,
		KeepAlpha: true,
	})

	out := NewRaster(src.Width, src.Height, src.Channels)
	for y := 0; y < src.Height; y++ {
		row := res.Pix[(y+1)*res.Stride+4:]
		for x := 0; x < src.Width; x++ {
			if src.Channels == 1 {
				out.Pix[y*src.Width+x] = row[x*4]
				continue
			}
			i := (y*src.Width + x) * 3
			out.Pix[i] = row[x*4]
			out.Pix[i+1] = row[x*4+1]
			out.Pix[i+2] = row[x*4+2]
		}
	}
	return out
}

// padReflect101 returns src surrounded by an n-pixel reflect-101 margin.
func padReflect101(src *Raster, n int) *Raster {
	ch := src.Channels
	out := NewRaster(src.Width+2*n, src.Height+2*n, ch)
	for y := 0; y < out.Height; y++ {
		sy := reflect101(y-n, src.Height)
		for x := 0; x < out.Width; x++ {
			sx := reflect101(x-n, src.Width)
			d := (y*out.Width + x) * ch
			s := (sy*src.Width + sx) * ch
			copy(out.Pix[d:d+ch], src.Pix[s:s+ch])
		}
	}
	return out
}
