package detection

import (
	"math"

	"github.com/ironsheep/page-prep/internal/geometry"
)

// DefaultEpsilonFraction scales the contour perimeter into the simplification
// tolerance used for page outlines.
const DefaultEpsilonFraction = 0.02

// ApproxPolyDP simplifies a closed polygon with the Douglas-Peucker algorithm.
//
// Parameters:
//   - c: Closed contour (the last point connects to the first).
//   - epsilon: Maximum distance in pixels between the original contour and
//     its approximation.
//
// Returns the retained vertices in contour order. A contour whose points all
// lie within epsilon of one point collapses to that single point.
//
// # Algorithm
//
//  1. Seed with an approximately most distant pair of points, found by three
//     rounds of "farthest point from the current one"
//  2. Split the ring at that pair into two open chains and simplify each,
//     keeping a point whenever it lies farther than epsilon from the chord
//     of its current span
//  3. Drop any remaining vertex that lies within epsilon/√2 of the line
//     through its neighbours and between them
func ApproxPolyDP(c geometry.Contour, epsilon float64) geometry.Contour {
	n := len(c)
	if n <= 2 {
		out := make(geometry.Contour, n)
		copy(out, c)
		return out
	}

	// Seed pair
	a, b := 0, 0
	var maxDist float64
	for iter := 0; iter < 3; iter++ {
		far, d := farthestFrom(c, a)
		maxDist = d
		a, b = far, a
	}
	if maxDist <= epsilon*epsilon {
		return geometry.Contour{c[a]}
	}

	keep := make([]bool, n)
	keep[a] = true
	keep[b] = true
	simplifyChain(c, a, b, epsilon, keep)
	simplifyChain(c, b, a, epsilon, keep)

	// Collect in ring order starting from the seed so output is stable.
	var poly geometry.Contour
	for k := 0; k < n; k++ {
		idx := (a + k) % n
		if keep[idx] {
			poly = append(poly, c[idx])
		}
	}

	return removeCollinear(poly, epsilon)
}

// farthestFrom returns the index of the point farthest from c[from] and the
// squared distance to it. Ties keep the earliest index.
func farthestFrom(c geometry.Contour, from int) (int, float64) {
	best, bestD := from, 0.0
	p := c[from]
	for i, q := range c {
		dx, dy := q.X-p.X, q.Y-p.Y
		if d := dx*dx + dy*dy; d > bestD {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// simplifyChain runs Douglas-Peucker over the ring chain from index start to
// index end (wrapping), marking retained interior points in keep.
func simplifyChain(c geometry.Contour, start, end int, epsilon float64, keep []bool) {
	n := len(c)
	span := func(s, e int) int { return (e - s + n) % n }

	type segment struct{ s, e int }
	stack := []segment{{start, end}}

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		length := span(seg.s, seg.e)
		if length < 2 {
			continue
		}

		p0, p1 := c[seg.s], c[seg.e]
		best, bestDist := -1, -1.0
		for k := 1; k < length; k++ {
			idx := (seg.s + k) % n
			if d := lineDistance(c[idx], p0, p1); d > bestDist {
				best, bestDist = idx, d
			}
		}

		if bestDist > epsilon {
			keep[best] = true
			stack = append(stack, segment{best, seg.e}, segment{seg.s, best})
		}
	}
}

// removeCollinear drops vertices lying on (within tolerance) and between the
// neighbouring vertices of a closed polygon.
func removeCollinear(poly geometry.Contour, epsilon float64) geometry.Contour {
	limit := 0.5 * epsilon * epsilon
	changed := true
	for changed && len(poly) > 2 {
		changed = false
		for i := 0; i < len(poly) && len(poly) > 2; i++ {
			prev := poly[(i-1+len(poly))%len(poly)]
			cur := poly[i]
			next := poly[(i+1)%len(poly)]

			dx, dy := next.X-prev.X, next.Y-prev.Y
			chord2 := dx*dx + dy*dy
			if chord2 == 0 {
				continue
			}
			cross := (cur.X-prev.X)*dy - (cur.Y-prev.Y)*dx
			between := (cur.X-prev.X)*(next.X-cur.X)+(cur.Y-prev.Y)*(next.Y-cur.Y) >= 0

			if cross*cross <= limit*chord2 && between {
				poly = append(poly[:i], poly[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return poly
}

// lineDistance is the perpendicular distance from p to the infinite line
// through a and b, or the distance to a when a == b.
func lineDistance(p, a, b geometry.Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return p.Distance(a)
	}
	return math.Abs((p.X-a.X)*dy-(p.Y-a.Y)*dx) / l
}

// ApproximateQuadrilateral simplifies c with tolerance
// epsilonFraction x perimeter and reports whether exactly four vertices
// remain.
//
// Returns:
//   - [4]geometry.Point2D: The four vertices in contour order (unordered with
//     respect to corner roles). Zero when ok is false.
//   - geometry.Contour: The simplified polygon, whatever its vertex count.
//   - bool: true only for exactly four vertices. Any other count means no
//     rectification is possible, which is an expected outcome, not an error.
func ApproximateQuadrilateral(c geometry.Contour, epsilonFraction float64) ([4]geometry.Point2D, geometry.Contour, bool) {
	var quad [4]geometry.Point2D
	if len(c) < 4 {
		return quad, c, false
	}

	poly := ApproxPolyDP(c, epsilonFraction*c.ArcLength())
	if len(poly) != 4 {
		return quad, poly, false
	}
	copy(quad[:], poly)
	return quad, poly, true
}
