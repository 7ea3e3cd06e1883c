package imaging

import "math"

// minWeight is the patch weight below which a candidate contributes nothing.
const minWeight = 0.001

// DenoiseOptions configures non-local-means filtering.
type DenoiseOptions struct {
	// Strength filters the luminance plane (or the single gray plane).
	// Zero disables that plane's filtering.
	Strength float64

	// ColorStrength filters the two chroma planes jointly.
	ColorStrength float64

	// TemplateWindow is the odd side length of the compared patches.
	TemplateWindow int

	// SearchWindow is the odd side length of the neighbourhood searched for
	// similar patches.
	SearchWindow int
}

// DefaultDenoiseOptions returns strength 10/10 with a 7x7 template and a
// 21x21 search window.
func DefaultDenoiseOptions() DenoiseOptions {
	return DenoiseOptions{Strength: 10, ColorStrength: 10, TemplateWindow: 7, SearchWindow: 21}
}

// DenoisePlanes applies non-local means jointly to same-sized 8-bit planes
// and returns new planes.
//
// Each output pixel is a weighted mean of every pixel q in the search window
// around p, where the weight decays with the mean squared difference between
// the template patches centred at p and q:
//
//	w(p,q) = exp(-(SSD(p,q) / templateArea) / (h² · len(planes)))
//
// Weights below 0.001 are dropped. Borders are replicated. The computation is
// organized per search offset, accumulating patch distances with separable
// running box sums, so the cost is independent of template size.
func DenoisePlanes(planes [][]uint8, width, height int, h float64, templateWindow, searchWindow int) [][]uint8 {
	cn := len(planes)
	out := make([][]uint8, cn)
	for c := range planes {
		out[c] = make([]uint8, len(planes[c]))
		copy(out[c], planes[c])
	}
	if h <= 0 || cn == 0 || width == 0 || height == 0 {
		return out
	}

	tr := templateWindow / 2
	sr := searchWindow / 2
	area := float64((2*tr + 1) * (2*tr + 1))
	n := width * height

	// Weight lookup by integer box sum. Beyond cutoff every weight is zero.
	denom := h * h * float64(cn) * area
	cutoff := int(-math.Log(minWeight)*denom) + 1
	maxBox := int(area) * cn * 255 * 255
	if cutoff > maxBox+1 {
		cutoff = maxBox + 1
	}
	lut := make([]float64, cutoff)
	for i := range lut {
		w := math.Exp(-float64(i) / denom)
		if w < minWeight {
			w = 0
		}
		lut[i] = w
	}

	num := make([][]float64, cn)
	for c := range num {
		num[c] = make([]float64, n)
	}
	den := make([]float64, n)

	diff := make([]int32, n)
	horiz := make([]int32, n)
	box := make([]int32, n)

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			// Squared difference between each pixel and its shifted partner.
			for y := 0; y < height; y++ {
				sy := clamp(y+dy, 0, height-1) * width
				row := y * width
				for x := 0; x < width; x++ {
					sx := clamp(x+dx, 0, width-1)
					var d int32
					for c := 0; c < cn; c++ {
						v := int32(planes[c][row+x]) - int32(planes[c][sy+sx])
						d += v * v
					}
					diff[row+x] = d
				}
			}

			boxSum(diff, horiz, box, width, height, tr)

			for y := 0; y < height; y++ {
				sy := clamp(y+dy, 0, height-1) * width
				row := y * width
				for x := 0; x < width; x++ {
					i := row + x
					bs := int(box[i])
					if bs >= cutoff {
						continue
					}
					w := lut[bs]
					if w == 0 {
						continue
					}
					j := sy + clamp(x+dx, 0, width-1)
					den[i] += w
					for c := 0; c < cn; c++ {
						num[c][i] += w * float64(planes[c][j])
					}
				}
			}
		}
	}

	for c := 0; c < cn; c++ {
		for i := 0; i < n; i++ {
			if den[i] > 0 {
				out[c][i] = roundToUint8(num[c][i] / den[i])
			}
		}
	}
	return out
}

// boxSum writes into dst the (2r+1)x(2r+1) window sum of src at every pixel,
// replicating borders. tmp holds the horizontal pass.
func boxSum(src, tmp, dst []int32, width, height, r int) {
	for y := 0; y < height; y++ {
		row := src[y*width : (y+1)*width]
		var s int32
		for k := -r; k <= r; k++ {
			s += row[clamp(k, 0, width-1)]
		}
		tmp[y*width] = s
		for x := 1; x < width; x++ {
			s += row[clamp(x+r, 0, width-1)] - row[clamp(x-r-1, 0, width-1)]
			tmp[y*width+x] = s
		}
	}

	for x := 0; x < width; x++ {
		var s int32
		for k := -r; k <= r; k++ {
			s += tmp[clamp(k, 0, height-1)*width+x]
		}
		dst[x] = s
		for y := 1; y < height; y++ {
			s += tmp[clamp(y+r, 0, height-1)*width+x] - tmp[clamp(y-r-1, 0, height-1)*width+x]
			dst[y*width+x] = s
		}
	}
}

// denoiseLab filters lightness with opts.Strength and the two chroma planes
// jointly with opts.ColorStrength.
func denoiseLab(lab *LabPlanes, opts DenoiseOptions) *LabPlanes {
	l := DenoisePlanes([][]uint8{lab.L}, lab.Width, lab.Height, opts.Strength, opts.TemplateWindow, opts.SearchWindow)
	ab := DenoisePlanes([][]uint8{lab.A, lab.B}, lab.Width, lab.Height, opts.ColorStrength, opts.TemplateWindow, opts.SearchWindow)
	return &LabPlanes{Width: lab.Width, Height: lab.Height, L: l[0], A: ab[0], B: ab[1]}
}
