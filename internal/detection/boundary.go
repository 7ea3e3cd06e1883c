package detection

import (
	"math"

	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// Bounds represents an axis-aligned bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner, both
// inclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Boundary is the dominant closed contour of an edge map, taken to be the
// page outline.
type Boundary struct {
	// Contour is the compressed outer border of the largest region.
	Contour geometry.Contour `json:"contour"`

	// Area is the contour's enclosed polygon area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the closed contour length in pixels.
	Perimeter float64 `json:"perimeter"`

	// Bounds is the contour's bounding box.
	Bounds Bounds `json:"bounds"`

	// Candidates is how many outer contours were considered.
	Candidates int `json:"candidates"`
}

// FindBoundary returns the outer contour of edges with the largest enclosed
// area.
//
// Parameters:
//   - edges: Binary edge raster, typically from imaging.BuildEdgeMap.
//
// Returns:
//   - *Boundary: The winning contour with its measurements.
//   - bool: false when the edge map holds no contours at all.
//
// When several contours share the maximum area, the first one found in
// raster-scan order wins. This is a heuristic: it assumes the page is the
// dominant region in frame and offers no alternative candidates.
func FindBoundary(edges *imaging.Raster) (*Boundary, bool) {
	contours := FindExternalContours(edges)
	if len(contours) == 0 {
		return nil, false
	}

	best := 0
	bestArea := contours[0].Area()
	for i := 1; i < len(contours); i++ {
		if a := contours[i].Area(); a > bestArea {
			best, bestArea = i, a
		}
	}

	c := contours[best]
	return &Boundary{
		Contour:    c,
		Area:       bestArea,
		Perimeter:  c.ArcLength(),
		Bounds:     boundsOf(c),
		Candidates: len(contours),
	}, true
}

func boundsOf(c geometry.Contour) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range c {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Bounds{X1: int(minX), Y1: int(minY), X2: int(maxX), Y2: int(maxY)}
}
