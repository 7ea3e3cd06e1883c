package imaging

import "math"

const histSize = 256

// EqualizeAdaptive applies contrast-limited adaptive histogram equalization
// (CLAHE) to one 8-bit plane and returns a new plane.
//
// Parameters:
//   - plane: Row-major samples, len == width*height. Not modified.
//   - clipLimit: Histogram clip relative to a uniform distribution; each bin
//     is capped at clipLimit*tileArea/256 (at least 1). Non-positive disables
//     clipping, which yields plain adaptive equalization.
//   - tilesX, tilesY: Grid dimensions. Planes not divisible by the grid are
//     padded by mirroring so every tile has the same size.
//
// Clipped excess is spread uniformly over all bins, with any remainder
// distributed at even strides. The per-tile lookup tables are blended
// bilinearly between the four nearest tile centres.
func EqualizeAdaptive(plane []uint8, width, height int, clipLimit float64, tilesX, tilesY int) []uint8 {
	out := make([]uint8, len(plane))
	if width == 0 || height == 0 {
		return out
	}
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}

	tileW := width / tilesX
	if width%tilesX != 0 {
		tileW = (width + tilesX - width%tilesX) / tilesX
	}
	tileH := height / tilesY
	if height%tilesY != 0 {
		tileH = (height + tilesY - height%tilesY) / tilesY
	}
	tileArea := tileW * tileH

	clip := 0
	if clipLimit > 0 {
		clip = int(clipLimit * float64(tileArea) / histSize)
		if clip < 1 {
			clip = 1
		}
	}
	lutScale := float64(histSize-1) / float64(tileArea)

	luts := make([][histSize]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var hist [histSize]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				row := reflect101(y, height) * width
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[plane[row+reflect101(x, width)]]++
				}
			}

			if clip > 0 {
				clipHistogram(&hist, clip)
			}

			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i := 0; i < histSize; i++ {
				sum += hist[i]
				lut[i] = roundToUint8(float64(sum) * lutScale)
			}
		}
	}

	invTW := 1.0 / float64(tileW)
	invTH := 1.0 / float64(tileH)

	for y := 0; y < height; y++ {
		tyf := float64(y)*invTH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := ty1 + 1
		ty1 = max(ty1, 0)
		ty2 = min(ty2, tilesY-1)

		for x := 0; x < width; x++ {
			txf := float64(x)*invTW - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := tx1 + 1
			tx1 = max(tx1, 0)
			tx2 = min(tx2, tilesX-1)

			v := plane[y*width+x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out[y*width+x] = roundToUint8(top*(1-ya) + bottom*ya)
		}
	}
	return out
}

// clipHistogram caps every bin at clip and redistributes the excess.
func clipHistogram(hist *[histSize]int, clip int) {
	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}

	batch := excess / histSize
	residual := excess - batch*histSize
	for i := range hist {
		hist[i] += batch
	}

	if residual > 0 {
		step := max(histSize/residual, 1)
		for i := 0; i < histSize && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}

// CLAHEOptions configures EnhanceContrast.
type CLAHEOptions struct {
	ClipLimit float64
	TilesX    int
	TilesY    int
}

// DefaultCLAHEOptions returns clip limit 2.0 over an 8x8 grid.
func DefaultCLAHEOptions() CLAHEOptions {
	return CLAHEOptions{ClipLimit: 2.0, TilesX: 8, TilesY: 8}
}
