package pipeline

import (
	"errors"

	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// Error kinds reported per image. ErrNoQuadrilateral and
// ErrDegenerateHomography only ever appear as pass-through reasons; the
// other two are fatal for the image they occur on.
var (
	// ErrDecode: the input bytes are not a decodable raster.
	ErrDecode = imaging.ErrDecode

	// ErrNoQuadrilateral: the boundary did not simplify to four vertices.
	ErrNoQuadrilateral = errors.New("no quadrilateral found")

	// ErrDegenerateHomography: the detected corners do not define a usable
	// perspective transform.
	ErrDegenerateHomography = geometry.ErrDegenerate

	// ErrNumeric: denoising or color conversion produced non-finite values.
	ErrNumeric = imaging.ErrNumeric
)
