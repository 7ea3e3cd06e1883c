package geometry

// OrderCorners assigns the canonical corner roles to four unordered points.
//
// The assignment is a fixed min/max heuristic over coordinate sums and
// differences:
//
//	TopLeft     = argmin(x + y)
//	BottomRight = argmax(x + y)
//	TopRight    = argmin(y - x)
//	BottomLeft  = argmax(y - x)
//
// Ties resolve to the earliest point in pts. Strongly rotated quadrilaterals
// (near 45 degrees) can tie or swap roles; no attempt is made to detect that,
// and callers that need a guaranteed simple polygon must verify it themselves.
func OrderCorners(pts [4]Point2D) Quadrilateral {
	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		p := pts[i]
		if p.X+p.Y < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if p.X+p.Y > pts[br].X+pts[br].Y {
			br = i
		}
		if p.Y-p.X < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if p.Y-p.X > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	return Quadrilateral{
		TopLeft:     pts[tl],
		TopRight:    pts[tr],
		BottomRight: pts[br],
		BottomLeft:  pts[bl],
	}
}
