package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when four correspondences do not determine a
// usable projective transform (collinear or coincident corners).
var ErrDegenerate = errors.New("degenerate homography")

// detEpsilon bounds |det(H)| below which a transform is treated as singular.
const detEpsilon = 1e-12

// Homography is a 3x3 projective transform stored row-major.
//
// A point (x, y) maps to (u/w, v/w) where [u v w]^T = H [x y 1]^T.
type Homography [9]float64

// NewHomography solves for the transform mapping each src[i] onto dst[i].
//
// The ninth coefficient is fixed to 1, leaving an 8x8 linear system built from
// two equations per correspondence:
//
//	u = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
//	v = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
//
// Returns ErrDegenerate if the system is singular or the resulting matrix is
// not invertible.
func NewHomography(src, dst [4]Point2D) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		a.SetRow(i*2, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		b.SetVec(i*2, u)

		a.SetRow(i*2+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(i*2+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var out Homography
	for i := 0; i < 8; i++ {
		out[i] = h.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return Homography{}, ErrDegenerate
		}
	}
	out[8] = 1

	if math.Abs(mat.Det(out.dense())) < detEpsilon {
		return Homography{}, ErrDegenerate
	}
	return out, nil
}

func (h Homography) dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, h[:])
	return mat.NewDense(3, 3, data)
}

// Inverse returns the transform mapping destination points back to the source.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(h.dense()); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// Apply maps p through the transform. ok is false when p maps to infinity.
func (h Homography) Apply(p Point2D) (q Point2D, ok bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point2D{}, false
	}
	return Point2D{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}
