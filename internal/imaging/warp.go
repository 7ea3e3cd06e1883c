package imaging

import (
	"math"

	"github.com/ironsheep/page-prep/internal/geometry"
)

// WarpPerspective renders a width x height raster by mapping every
// destination pixel centre through inv (destination -> source) and sampling
// src bilinearly.
//
// Source positions outside the image contribute black. The output has the
// same channel count as src.
func WarpPerspective(src *Raster, inv geometry.Homography, width, height int) *Raster {
	out := NewRaster(width, height, src.Channels)
	ch := src.Channels

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := inv.Apply(geometry.Pt(float64(x), float64(y)))
			if !ok {
				continue
			}
			sampleBilinear(src, p.X, p.Y, out.Pix[(y*width+x)*ch:(y*width+x+1)*ch])
		}
	}
	return out
}

// sampleBilinear writes the interpolated value at (fx, fy) into dst, treating
// pixels outside src as 0.
func sampleBilinear(src *Raster, fx, fy float64, dst []uint8) {
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return
	}
	// Entirely outside, including the one-pixel interpolation apron.
	if fx <= -1 || fy <= -1 || fx >= float64(src.Width) || fy >= float64(src.Height) {
		return
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	ch := src.Channels
	at := func(x, y, c int) float64 {
		if x < 0 || y < 0 || x >= src.Width || y >= src.Height {
			return 0
		}
		return float64(src.Pix[(y*src.Width+x)*ch+c])
	}

	for c := 0; c < ch; c++ {
		top := at(x0, y0, c)*(1-ax) + at(x0+1, y0, c)*ax
		bottom := at(x0, y0+1, c)*(1-ax) + at(x0+1, y0+1, c)*ax
		dst[c] = roundToUint8(top*(1-ay) + bottom*ay)
	}
}
