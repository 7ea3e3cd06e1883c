// Package geometry provides the planar types shared by the page detection and
// rectification stages: points, contours, quadrilaterals and homographies.
//
// All coordinates are in source-image pixel space with the origin at the
// top-left corner, X increasing rightward and Y increasing downward.
package geometry

import "math"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Contour is an ordered sequence of points forming a closed polygon boundary.
// The last point connects back to the first.
type Contour []Point2D

// ArcLength returns the perimeter of the closed polygon.
func (c Contour) ArcLength() float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 0; i < n; i++ {
		length += c[i].Distance(c[(i+1)%n])
	}
	return length
}

// Area returns the absolute enclosed area of the closed polygon using the
// shoelace formula.
func (c Contour) Area() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Quadrilateral holds four corner points. Once produced by OrderCorners the
// fields carry their named roles; before that they are just four points.
type Quadrilateral struct {
	TopLeft     Point2D `json:"top_left"`
	TopRight    Point2D `json:"top_right"`
	BottomRight Point2D `json:"bottom_right"`
	BottomLeft  Point2D `json:"bottom_left"`
}

// Points returns the corners in TL, TR, BR, BL order.
func (q Quadrilateral) Points() [4]Point2D {
	return [4]Point2D{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Size returns the destination width and height for rectifying q.
//
// Each side length is truncated to whole pixels and the larger of the two
// opposite sides wins, which compensates for residual perspective skew.
func (q Quadrilateral) Size() (width, height int) {
	top := int(q.TopRight.Distance(q.TopLeft))
	bottom := int(q.BottomRight.Distance(q.BottomLeft))
	left := int(q.BottomLeft.Distance(q.TopLeft))
	right := int(q.BottomRight.Distance(q.TopRight))
	return max(top, bottom), max(left, right)
}
