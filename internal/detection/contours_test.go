package detection

import (
	"testing"

	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// drawRect sets a rectangle outline (inclusive corners) to 255.
func drawRect(r *imaging.Raster, x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		r.Set(x, y1, 0, 255)
		r.Set(x, y2, 0, 255)
	}
	for y := y1; y <= y2; y++ {
		r.Set(x1, y, 0, 255)
		r.Set(x2, y, 0, 255)
	}
}

// fillRect sets a solid rectangle (inclusive corners) to 255.
func fillRect(r *imaging.Raster, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			r.Set(x, y, 0, 255)
		}
	}
}

func hasPoint(c geometry.Contour, x, y float64) bool {
	for _, p := range c {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

func TestFindExternalContours_Rectangle(t *testing.T) {
	tests := []struct {
		name string
		draw func(r *imaging.Raster)
	}{
		{"outline", func(r *imaging.Raster) { drawRect(r, 10, 10, 29, 19) }},
		{"filled", func(r *imaging.Raster) { fillRect(r, 10, 10, 29, 19) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := imaging.NewRaster(40, 30, 1)
			tt.draw(edges)

			contours := FindExternalContours(edges)
			if len(contours) != 1 {
				t.Fatalf("expected 1 contour, got %d", len(contours))
			}

			c := contours[0]
			if len(c) != 4 {
				t.Fatalf("expected 4 compressed points, got %d: %v", len(c), c)
			}
			for _, corner := range [][2]float64{{10, 10}, {29, 10}, {29, 19}, {10, 19}} {
				if !hasPoint(c, corner[0], corner[1]) {
					t.Errorf("missing corner (%v, %v) in %v", corner[0], corner[1], c)
				}
			}
			if c.Area() != 171 {
				t.Errorf("Area: got %v, want 171", c.Area())
			}
		})
	}
}

func TestFindExternalContours_NestedIgnored(t *testing.T) {
	edges := imaging.NewRaster(40, 30, 1)
	drawRect(edges, 5, 5, 34, 24)
	drawRect(edges, 12, 12, 20, 18)

	contours := FindExternalContours(edges)
	if len(contours) != 1 {
		t.Fatalf("expected only the outer contour, got %d", len(contours))
	}
	if !hasPoint(contours[0], 5, 5) || !hasPoint(contours[0], 34, 24) {
		t.Errorf("expected outer rectangle, got %v", contours[0])
	}
}

func TestFindExternalContours_Siblings(t *testing.T) {
	edges := imaging.NewRaster(60, 30, 1)
	drawRect(edges, 2, 2, 20, 20)
	drawRect(edges, 30, 5, 50, 25)

	contours := FindExternalContours(edges)
	if len(contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(contours))
	}
	// Raster-scan order of starting pixels.
	if contours[0][0] != geometry.Pt(2, 2) {
		t.Errorf("first contour start: got %v, want (2,2)", contours[0][0])
	}
	if contours[1][0] != geometry.Pt(30, 5) {
		t.Errorf("second contour start: got %v, want (30,5)", contours[1][0])
	}
}

func TestFindExternalContours_IsolatedPixel(t *testing.T) {
	edges := imaging.NewRaster(10, 10, 1)
	edges.Set(4, 6, 0, 255)

	contours := FindExternalContours(edges)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if len(contours[0]) != 1 || contours[0][0] != geometry.Pt(4, 6) {
		t.Errorf("got %v, want single point (4,6)", contours[0])
	}
}

func TestFindExternalContours_TouchingBorder(t *testing.T) {
	edges := imaging.NewRaster(20, 20, 1)
	drawRect(edges, 0, 0, 19, 19)

	contours := FindExternalContours(edges)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if got := contours[0].Area(); got != 361 {
		t.Errorf("Area: got %v, want 361", got)
	}
}

func TestFindExternalContours_Empty(t *testing.T) {
	tests := []struct {
		name  string
		edges *imaging.Raster
	}{
		{"blank", imaging.NewRaster(30, 30, 1)},
		{"zero size", imaging.NewRaster(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindExternalContours(tt.edges); len(got) != 0 {
				t.Errorf("expected no contours, got %d", len(got))
			}
		})
	}
}
