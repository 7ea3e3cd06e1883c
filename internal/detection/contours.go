package detection

import (
	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// Neighbour offsets indexed counter-clockwise (in image orientation, Y down)
// starting east. Clockwise is decreasing index.
var (
	dirRow = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
	dirCol = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
)

// borderInfo records the topology of one traced border. Index 1 is the image
// frame, which behaves as a hole border enclosing everything.
type borderInfo struct {
	outer  bool
	parent int
}

// FindExternalContours traces the outermost borders of the non-zero regions
// of a binary raster.
//
// Parameters:
//   - edges: A 1-channel raster; any non-zero sample is foreground.
//
// Returns the outer borders whose parent is the image frame, in raster-scan
// order of their starting pixel. Borders nested inside another region (hole
// borders and everything inside them) are omitted.
//
// # Algorithm
//
// Suzuki-Abe border following: a raster scan finds border starting points,
// each border is traced with an 8-connected neighbourhood walk and labelled
// with a unique number, and the last-seen border number on the current row
// determines each new border's parent. Straight horizontal, vertical and
// diagonal runs are compressed to their end points.
func FindExternalContours(edges *imaging.Raster) []geometry.Contour {
	width, height := edges.Width, edges.Height
	if width == 0 || height == 0 {
		return nil
	}

	// Padded label image: a zero frame around the input simplifies bounds.
	pw, ph := width+2, height+2
	f := make([]int32, pw*ph)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.Pix[(y*width+x)*edges.Channels] != 0 {
				f[(y+1)*pw+x+1] = 1
			}
		}
	}

	borders := []borderInfo{{}, {outer: false, parent: 0}}
	var contours []geometry.Contour
	nbd := int32(1)

	for i := 1; i < ph-1; i++ {
		lnbd := int32(1)
		for j := 1; j < pw-1; j++ {
			fij := f[i*pw+j]
			if fij == 0 {
				continue
			}

			var outer bool
			var fromDir int
			switch {
			case fij == 1 && f[i*pw+j-1] == 0:
				outer = true
				fromDir = 4 // west
			case fij >= 1 && f[i*pw+j+1] == 0:
				outer = false
				fromDir = 0 // east
				if fij > 1 {
					lnbd = fij
				}
			default:
				if fij != 1 {
					lnbd = abs32(fij)
				}
				continue
			}

			nbd++
			prev := borders[lnbd]
			parent := int(lnbd)
			if outer == prev.outer {
				parent = prev.parent
			}
			borders = append(borders, borderInfo{outer: outer, parent: parent})

			pts := traceBorder(f, pw, i, j, fromDir, nbd)

			if outer && parent == 1 {
				c := make(geometry.Contour, len(pts))
				for k, p := range pts {
					c[k] = geometry.Pt(float64(p[1]-1), float64(p[0]-1))
				}
				contours = append(contours, compressChain(c))
			}

			if v := f[i*pw+j]; v != 1 {
				lnbd = abs32(v)
			}
		}
	}
	return contours
}

// traceBorder follows one border starting at (i, j) whose zero neighbour lies
// in direction fromDir, labelling it nbd in f. Returns the visited pixels as
// (row, col) pairs in padded coordinates.
func traceBorder(f []int32, pw, i, j, fromDir int, nbd int32) [][2]int {
	at := func(r, c int) int32 { return f[r*pw+c] }

	// Clockwise search around (i, j) for the first non-zero neighbour.
	first := -1
	for k := 0; k < 8; k++ {
		d := (fromDir - k + 8) % 8
		if at(i+dirRow[d], j+dirCol[d]) != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		// Isolated pixel.
		f[i*pw+j] = -nbd
		return [][2]int{{i, j}}
	}

	i1, j1 := i+dirRow[first], j+dirCol[first]
	i2, j2 := i1, j1
	i3, j3 := i, j
	pts := [][2]int{{i, j}}

	for {
		// Counter-clockwise search around (i3, j3), starting just after
		// the direction of (i2, j2).
		back := direction(i2-i3, j2-j3)
		eastExamined := false
		var i4, j4 int
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			r, c := i3+dirRow[d], j3+dirCol[d]
			if at(r, c) != 0 {
				i4, j4 = r, c
				break
			}
			if d == 0 {
				eastExamined = true
			}
		}

		switch {
		case eastExamined:
			f[i3*pw+j3] = -nbd
		case at(i3, j3) == 1:
			f[i3*pw+j3] = nbd
		}

		if i4 == i && j4 == j && i3 == i1 && j3 == j1 {
			break
		}
		i2, j2 = i3, j3
		i3, j3 = i4, j4
		pts = append(pts, [2]int{i3, j3})
	}
	return pts
}

// direction maps a unit neighbour offset to its index in dirRow/dirCol.
func direction(dr, dc int) int {
	for d := 0; d < 8; d++ {
		if dirRow[d] == dr && dirCol[d] == dc {
			return d
		}
	}
	return 0
}

// compressChain drops every point that continues the previous step in the
// same direction, keeping only the vertices where the direction changes. The
// starting point is always kept.
func compressChain(c geometry.Contour) geometry.Contour {
	n := len(c)
	if n < 3 {
		return c
	}
	out := geometry.Contour{c[0]}
	for k := 1; k < n; k++ {
		prev := c[k-1]
		cur := c[k]
		next := c[(k+1)%n]
		if sign(cur.X-prev.X) == sign(next.X-cur.X) && sign(cur.Y-prev.Y) == sign(next.Y-cur.Y) {
			continue
		}
		out = append(out, cur)
	}
	return out
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
