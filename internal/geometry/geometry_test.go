package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestOrderCorners_CanonicalRectangle(t *testing.T) {
	want := Quadrilateral{
		TopLeft:     Pt(0, 0),
		TopRight:    Pt(100, 0),
		BottomRight: Pt(100, 50),
		BottomLeft:  Pt(0, 50),
	}

	// Every permutation of the four corners must order identically.
	corners := []Point2D{Pt(0, 0), Pt(100, 0), Pt(100, 50), Pt(0, 50)}
	perms := permutations([]int{0, 1, 2, 3})
	if len(perms) != 24 {
		t.Fatalf("expected 24 permutations, got %d", len(perms))
	}

	for _, perm := range perms {
		var in [4]Point2D
		for i, idx := range perm {
			in[i] = corners[idx]
		}
		got := OrderCorners(in)
		if got != want {
			t.Errorf("OrderCorners(%v) = %+v, want %+v", in, got, want)
		}
	}
}

func TestOrderCorners_PerspectiveQuad(t *testing.T) {
	in := [4]Point2D{Pt(340, 280), Pt(50, 40), Pt(40, 260), Pt(350, 60)}
	got := OrderCorners(in)

	if got.TopLeft != Pt(50, 40) {
		t.Errorf("TopLeft: got %v, want (50,40)", got.TopLeft)
	}
	if got.TopRight != Pt(350, 60) {
		t.Errorf("TopRight: got %v, want (350,60)", got.TopRight)
	}
	if got.BottomRight != Pt(340, 280) {
		t.Errorf("BottomRight: got %v, want (340,280)", got.BottomRight)
	}
	if got.BottomLeft != Pt(40, 260) {
		t.Errorf("BottomLeft: got %v, want (40,260)", got.BottomLeft)
	}
}

func TestQuadrilateralSize(t *testing.T) {
	tests := []struct {
		name         string
		q            Quadrilateral
		wantW, wantH int
	}{
		{
			"axis aligned",
			Quadrilateral{Pt(0, 0), Pt(100, 0), Pt(100, 50), Pt(0, 50)},
			100, 50,
		},
		{
			"takes longer opposite side",
			Quadrilateral{Pt(10, 0), Pt(90, 0), Pt(100, 60), Pt(0, 60)},
			100, 60,
		},
		{
			"truncates fractional lengths",
			Quadrilateral{Pt(50, 40), Pt(350, 60), Pt(340, 280), Pt(40, 260)},
			300, 220,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.q.Size()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestContourAreaAndArcLength(t *testing.T) {
	c := Contour{Pt(0, 0), Pt(10, 0), Pt(10, 5), Pt(0, 5)}
	if got := c.Area(); got != 50 {
		t.Errorf("Area() = %v, want 50", got)
	}
	if got := c.ArcLength(); got != 30 {
		t.Errorf("ArcLength() = %v, want 30", got)
	}

	// Winding direction does not change the absolute area.
	rev := Contour{Pt(0, 5), Pt(10, 5), Pt(10, 0), Pt(0, 0)}
	if got := rev.Area(); got != 50 {
		t.Errorf("reversed Area() = %v, want 50", got)
	}

	if got := (Contour{Pt(1, 1), Pt(2, 2)}).Area(); got != 0 {
		t.Errorf("two-point Area() = %v, want 0", got)
	}
}

func TestNewHomography_MapsCorners(t *testing.T) {
	src := [4]Point2D{Pt(50, 40), Pt(350, 60), Pt(340, 280), Pt(40, 260)}
	dst := [4]Point2D{Pt(0, 0), Pt(299, 0), Pt(299, 219), Pt(0, 219)}

	h, err := NewHomography(src, dst)
	if err != nil {
		t.Fatalf("NewHomography failed: %v", err)
	}

	for i := range src {
		got, ok := h.Apply(src[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if math.Abs(got.X-dst[i].X) > 1e-6 || math.Abs(got.Y-dst[i].Y) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
		}
	}

	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	for i := range dst {
		got, _ := inv.Apply(dst[i])
		if math.Abs(got.X-src[i].X) > 1e-6 || math.Abs(got.Y-src[i].Y) > 1e-6 {
			t.Errorf("inverse corner %d: got %v, want %v", i, got, src[i])
		}
	}
}

func TestNewHomography_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		src  [4]Point2D
	}{
		{"collinear", [4]Point2D{Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0)}},
		{"coincident", [4]Point2D{Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)}},
	}
	dst := [4]Point2D{Pt(0, 0), Pt(9, 0), Pt(9, 9), Pt(0, 9)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHomography(tt.src, dst)
			if !errors.Is(err, ErrDegenerate) {
				t.Errorf("expected ErrDegenerate, got %v", err)
			}
		})
	}
}

func permutations(xs []int) [][]int {
	if len(xs) <= 1 {
		return [][]int{append([]int(nil), xs...)}
	}
	var out [][]int
	for i := range xs {
		rest := make([]int, 0, len(xs)-1)
		rest = append(rest, xs[:i]...)
		rest = append(rest, xs[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{xs[i]}, p...))
		}
	}
	return out
}
