// Package detection locates the page outline in an edge map.
//
// Detection runs in two steps. FindBoundary traces the outer borders of the
// edge map and keeps the one enclosing the largest area. ApproximateQuadrilateral
// then simplifies that border with Douglas-Peucker and accepts it only when
// exactly four vertices remain.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes are inclusive on both corners
//
// # Limitations
//
// The largest-contour heuristic assumes the page dominates the frame. A large
// background object with a cleaner outline than the page will win, and no
// alternative candidates are returned. Pages whose outline is broken by
// occlusion or low contrast against the background usually simplify to some
// other vertex count and are reported as not found.
package detection
