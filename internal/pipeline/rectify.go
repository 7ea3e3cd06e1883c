package pipeline

import (
	"fmt"

	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// Outcome tags the result of rectification.
type Outcome int

const (
	// Rectified: a quadrilateral was found and the page was warped flat.
	Rectified Outcome = iota

	// PassThrough: no usable quadrilateral; the source raster is forwarded
	// unchanged. This is an expected outcome, not a failure.
	PassThrough
)

// String returns "rectified" or "pass_through".
func (o Outcome) String() string {
	switch o {
	case Rectified:
		return "rectified"
	case PassThrough:
		return "pass_through"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Rectification is the tagged result of the rectify stage.
type Rectification struct {
	Outcome Outcome

	// Image is the warped page when Rectified, or the untouched source when
	// PassThrough.
	Image *imaging.Raster

	// Quad holds the ordered source corners. Only meaningful when Rectified.
	Quad geometry.Quadrilateral

	// Reason explains a pass-through (ErrNoQuadrilateral or
	// ErrDegenerateHomography). Nil when Rectified.
	Reason error
}

// Rectify warps the region of src bounded by q onto an axis-aligned raster.
//
// Parameters:
//   - src: Source raster. Not modified.
//   - q: Corners in their canonical roles (see geometry.OrderCorners).
//
// Returns:
//   - *imaging.Raster: The rectified page, sized by q.Size().
//   - error: ErrDegenerateHomography (wrapped) when q is too small or its
//     corners do not determine an invertible transform.
//
// # Algorithm
//
//  1. Destination size: the larger of each pair of opposite side lengths
//  2. Destination corners (0,0), (w-1,0), (w-1,h-1), (0,h-1)
//  3. Solve the source-to-destination homography and invert it
//  4. Inverse-map every destination pixel and sample the source bilinearly
func Rectify(src *imaging.Raster, q geometry.Quadrilateral) (*imaging.Raster, error) {
	w, h := q.Size()
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: destination %dx%d too small", ErrDegenerateHomography, w, h)
	}

	dst := [4]geometry.Point2D{
		geometry.Pt(0, 0),
		geometry.Pt(float64(w-1), 0),
		geometry.Pt(float64(w-1), float64(h-1)),
		geometry.Pt(0, float64(h-1)),
	}

	hm, err := geometry.NewHomography(q.Points(), dst)
	if err != nil {
		return nil, fmt.Errorf("failed to solve homography: %w", err)
	}
	inv, err := hm.Inverse()
	if err != nil {
		return nil, fmt.Errorf("failed to invert homography: %w", err)
	}

	return imaging.WarpPerspective(src, inv, w, h), nil
}
