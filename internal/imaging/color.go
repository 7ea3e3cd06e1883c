package imaging

import (
	"errors"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrNumeric is returned when a color conversion yields a non-finite value.
var ErrNumeric = errors.New("numeric failure in color conversion")

// LabPlanes holds an image split into three 8-bit planes in CIE L*a*b*
// (D65 white point).
//
// The encoding follows the common 8-bit convention:
//
//	L = L* * 255 / 100
//	A = a* + 128
//	B = b* + 128
//
// so that each plane can be processed by 8-bit filters and recombined.
type LabPlanes struct {
	Width  int
	Height int
	L      []uint8
	A      []uint8
	B      []uint8
}

// ToLab converts a 3-channel raster into Lab planes.
//
// Returns ErrNumeric if any pixel converts to NaN or Inf.
func ToLab(src *Raster) (*LabPlanes, error) {
	if src.Channels != 3 {
		return nil, errors.New("lab conversion requires a 3-channel raster")
	}
	n := src.Width * src.Height
	p := &LabPlanes{
		Width:  src.Width,
		Height: src.Height,
		L:      make([]uint8, n),
		A:      make([]uint8, n),
		B:      make([]uint8, n),
	}

	// Runs of identical pixels reuse the previous conversion.
	var lastR, lastG, lastB uint8
	var lastL, lastA, lastBB uint8
	haveLast := false

	for i := 0; i < n; i++ {
		r, g, b := src.Pix[i*3], src.Pix[i*3+1], src.Pix[i*3+2]
		if haveLast && r == lastR && g == lastG && b == lastB {
			p.L[i], p.A[i], p.B[i] = lastL, lastA, lastBB
			continue
		}

		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		l, a, bb := c.Lab()
		if !finite(l) || !finite(a) || !finite(bb) {
			return nil, ErrNumeric
		}

		// go-colorful scales L to 0..1 and a/b to roughly -1..1.
		p.L[i] = roundToUint8(l * 255)
		p.A[i] = roundToUint8(a*100 + 128)
		p.B[i] = roundToUint8(bb*100 + 128)

		lastR, lastG, lastB = r, g, b
		lastL, lastA, lastBB = p.L[i], p.A[i], p.B[i]
		haveLast = true
	}
	return p, nil
}

// ToRaster recombines the planes into a 3-channel RGB raster, clamping
// out-of-gamut colors to the nearest displayable value.
//
// Returns ErrNumeric if any pixel converts to NaN or Inf.
func (p *LabPlanes) ToRaster() (*Raster, error) {
	out := NewRaster(p.Width, p.Height, 3)

	// Memoized by packed Lab triple, bounded at 64Ki entries.
	cache := make(map[uint32][3]uint8)

	for i := range p.L {
		key := uint32(p.L[i])<<16 | uint32(p.A[i])<<8 | uint32(p.B[i])
		rgb, ok := cache[key]
		if !ok {
			c := colorful.Lab(
				float64(p.L[i])/255,
				(float64(p.A[i])-128)/100,
				(float64(p.B[i])-128)/100,
			)
			if !finite(c.R) || !finite(c.G) || !finite(c.B) {
				return nil, ErrNumeric
			}
			r, g, b := c.Clamped().RGB255()
			rgb = [3]uint8{r, g, b}
			if len(cache) < 1<<16 {
				cache[key] = rgb
			}
		}
		out.Pix[i*3] = rgb[0]
		out.Pix[i*3+1] = rgb[1]
		out.Pix[i*3+2] = rgb[2]
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
