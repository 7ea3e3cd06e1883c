package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/page-prep/internal/geometry"
)

// DefaultOverlayColor is the outline color used when none is given.
const DefaultOverlayColor = "#00FF00"

// OverlayOptions controls DrawOutline.
type OverlayOptions struct {
	// Color is a hex string "#RRGGBB" or "#RRGGBBAA".
	Color string

	// Thickness is the stroke width in pixels (minimum 1).
	Thickness int

	// Labels, when non-empty, are drawn next to the matching vertex.
	Labels []string
}

// DrawOutline returns a copy of src with the closed polygon pts stroked on top.
//
// Used to visualize a detected page boundary or quadrilateral before the
// image is rectified. Invalid colors fall back to DefaultOverlayColor.
func DrawOutline(src *Raster, pts []geometry.Point2D, opts OverlayOptions) *image.RGBA {
	base := src.Image()
	bounds := base.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, base, bounds.Min, draw.Src)

	c, err := parseHexColor(opts.Color)
	if err != nil {
		c, _ = parseHexColor(DefaultOverlayColor)
	}
	thickness := opts.Thickness
	if thickness < 1 {
		thickness = 1
	}

	n := len(pts)
	for i := 0; i < n && n > 1; i++ {
		drawLine(result, pts[i], pts[(i+1)%n], c, thickness)
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}
	for i, label := range opts.Labels {
		if i >= n || label == "" {
			break
		}
		drawLabel(result, int(pts[i].X)+thickness+2, int(pts[i].Y)+thickness+2, label, labelColor, bgColor)
	}

	return result
}

// QuadLabels are the vertex labels for a Quadrilateral's Points() order.
var QuadLabels = []string{"TL", "TR", "BR", "BL"}

// drawLine strokes a segment by stepping one pixel along its major axis and
// stamping a thickness-sized square at each step.
func drawLine(img *image.RGBA, a, b geometry.Point2D, c color.RGBA, thickness int) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	bounds := img.Bounds()

	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := int(math.Round(a.X + dx*t))
		cy := int(math.Round(a.Y + dy*t))
		for oy := -half; oy < thickness-half; oy++ {
			for ox := -half; ox < thickness-half; ox++ {
				p := image.Pt(cx+ox, cy+oy)
				if p.In(bounds) {
					img.SetRGBA(p.X, p.Y, c)
				}
			}
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel renders text with basicfont's 7x13 face on a filled background
// box whose top-left corner is (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	box := image.Rect(x-1, y-1, x+len(text)*face.Advance+1, y+face.Height+1).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + face.Ascent)},
	}
	d.DrawString(text)
}
