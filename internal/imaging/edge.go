package imaging

import (
	"fmt"
	"math"
)

// EdgeOptions configures BuildEdgeMap.
type EdgeOptions struct {
	// BlurSize is the side of the square binomial smoothing kernel applied
	// before differentiation. Must be odd and >= 1; 1 disables smoothing.
	BlurSize int

	// Low and High are the hysteresis thresholds on gradient magnitude.
	// A pixel whose magnitude exceeds High is a strong edge; one whose
	// magnitude exceeds Low is kept only if linked to a strong edge.
	Low  float64
	High float64

	// L2Gradient selects sqrt(gx²+gy²) for the magnitude instead of |gx|+|gy|.
	L2Gradient bool
}

// DefaultEdgeOptions returns the thresholds tuned for photographed pages.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{BlurSize: 5, Low: 75, High: 200}
}

// Validate checks option ranges.
func (o EdgeOptions) Validate() error {
	if o.BlurSize < 1 || o.BlurSize%2 == 0 {
		return fmt.Errorf("blur size must be a positive odd number, got %d", o.BlurSize)
	}
	if o.Low < 0 || o.High < 0 {
		return fmt.Errorf("edge thresholds must be non-negative, got low=%v high=%v", o.Low, o.High)
	}
	if o.Low > o.High {
		return fmt.Errorf("low edge threshold %v exceeds high threshold %v", o.Low, o.High)
	}
	return nil
}

// BuildEdgeMap produces a binary edge map of src.
//
// Parameters:
//   - src: Source raster (1 or 3 channels). Not modified.
//   - opts: Smoothing and hysteresis settings.
//
// Returns a 1-channel raster of the same size where edge pixels are 255 and
// all others are 0.
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 weights, rounded to 8 bits
//  2. Binomial blur (the 5x5 kernel is the outer product of [1 4 6 4 1]/16),
//     reflecting about the border, rounded to 8 bits
//  3. 3x3 Sobel gradients with replicated borders
//  4. Non-maximum suppression along the quantized gradient direction
//  5. Hysteresis: every candidate 8-connected (transitively) to a strong
//     pixel is promoted to an edge
//
// The function is deterministic; identical input always yields an identical
// map.
func BuildEdgeMap(src *Raster, opts EdgeOptions) *Raster {
	width, height := src.Width, src.Height
	out := NewRaster(width, height, 1)
	if width == 0 || height == 0 {
		return out
	}

	gray := Grayscale(src)
	blurred := binomialBlur(gray.Pix, width, height, opts.BlurSize)

	// Sobel gradients and magnitude
	n := width * height
	gradX := make([]int32, n)
	gradY := make([]int32, n)
	magnitude := make([]float64, n)

	for y := 0; y < height; y++ {
		ym := clamp(y-1, 0, height-1) * width
		y0 := y * width
		yp := clamp(y+1, 0, height-1) * width
		for x := 0; x < width; x++ {
			xm := clamp(x-1, 0, width-1)
			xp := clamp(x+1, 0, width-1)

			gx := int32(blurred[ym+xp]) - int32(blurred[ym+xm]) +
				2*(int32(blurred[y0+xp])-int32(blurred[y0+xm])) +
				int32(blurred[yp+xp]) - int32(blurred[yp+xm])
			gy := int32(blurred[yp+xm]) - int32(blurred[ym+xm]) +
				2*(int32(blurred[yp+x])-int32(blurred[ym+x])) +
				int32(blurred[yp+xp]) - int32(blurred[ym+xp])

			i := y0 + x
			gradX[i] = gx
			gradY[i] = gy
			if opts.L2Gradient {
				magnitude[i] = math.Sqrt(float64(gx)*float64(gx) + float64(gy)*float64(gy))
			} else {
				magnitude[i] = math.Abs(float64(gx)) + math.Abs(float64(gy))
			}
		}
	}

	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression. Each candidate is classified as weak (1) or
	// strong (2); everything else stays 0.
	const (
		tan22 = 0.41421356237309503 // tan(22.5°)
		tan67 = 2.414213562373095   // tan(67.5°)
	)
	class := make([]uint8, n)
	var strong []int

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag <= opts.Low {
				continue
			}

			ax := math.Abs(float64(gradX[i]))
			ay := math.Abs(float64(gradY[i]))

			var keep bool
			switch {
			case ay < ax*tan22:
				// Horizontal gradient: compare left/right
				keep = mag > magAt(x-1, y) && mag >= magAt(x+1, y)
			case ay > ax*tan67:
				// Vertical gradient: compare up/down
				keep = mag > magAt(x, y-1) && mag >= magAt(x, y+1)
			default:
				// Diagonal: direction depends on whether gx and gy agree in sign
				s := 1
				if (gradX[i] < 0) != (gradY[i] < 0) {
					s = -1
				}
				keep = mag > magAt(x-s, y-1) && mag > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}

			if mag > opts.High {
				class[i] = 2
				strong = append(strong, i)
			} else {
				class[i] = 1
			}
		}
	}

	// Hysteresis: flood from strong pixels through weak candidates.
	stack := strong
	for _, i := range strong {
		out.Pix[i] = 255
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for ky := -1; ky <= 1; ky++ {
			py := y + ky
			if py < 0 || py >= height {
				continue
			}
			for kx := -1; kx <= 1; kx++ {
				px := x + kx
				if px < 0 || px >= width {
					continue
				}
				j := py*width + px
				if class[j] == 1 && out.Pix[j] == 0 {
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return out
}

// Grayscale converts src to a 1-channel raster using ITU-R BT.601 luminance
// weights (0.299*R + 0.587*G + 0.114*B), rounded to the nearest integer.
// A 1-channel input is returned as a copy.
func Grayscale(src *Raster) *Raster {
	if src.Channels == 1 {
		return src.Clone()
	}
	out := NewRaster(src.Width, src.Height, 1)
	for i, j := 0, 0; j < len(out.Pix); i, j = i+3, j+1 {
		r := uint32(src.Pix[i])
		g := uint32(src.Pix[i+1])
		b := uint32(src.Pix[i+2])
		out.Pix[j] = uint8((299*r + 587*g + 114*b + 500) / 1000)
	}
	return out
}

// binomialKernel returns row size of Pascal's triangle, e.g. [1 4 6 4 1] for
// size 5, and its sum.
func binomialKernel(size int) ([]uint32, uint32) {
	k := make([]uint32, size)
	k[0] = 1
	for i := 1; i < size; i++ {
		for j := i; j > 0; j-- {
			k[j] += k[j-1]
		}
	}
	return k, 1 << uint(size-1)
}

// binomialBlur applies a separable size x size binomial blur with
// reflect-101 borders. The result is rounded back to 8 bits.
func binomialBlur(pix []uint8, width, height, size int) []uint8 {
	out := make([]uint8, len(pix))
	if size <= 1 {
		copy(out, pix)
		return out
	}

	kernel, sum := binomialKernel(size)
	r := size / 2
	norm := sum * sum

	// Horizontal pass keeps full precision; rounding happens once after the
	// vertical pass.
	tmp := make([]uint32, len(pix))
	for y := 0; y < height; y++ {
		row := pix[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			var acc uint32
			for k := -r; k <= r; k++ {
				acc += kernel[k+r] * uint32(row[reflect101(x+k, width)])
			}
			tmp[y*width+x] = acc
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc uint32
			for k := -r; k <= r; k++ {
				acc += kernel[k+r] * tmp[reflect101(y+k, height)*width+x]
			}
			out[y*width+x] = uint8((acc + norm/2) / norm)
		}
	}
	return out
}
