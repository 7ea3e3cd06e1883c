// Package pipeline composes the page preparation stages and drives them over
// a directory of photographs.
//
// A single run is pure computation: edge map, boundary, quadrilateral,
// corner ordering, rectification, enhancement and sharpening, each stage
// producing a new raster. Pipeline values are immutable after New and may be
// shared by any number of goroutines.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/ironsheep/page-prep/internal/config"
	"github.com/ironsheep/page-prep/internal/detection"
	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
)

// Pipeline runs the preparation stages with a fixed parameter set.
type Pipeline struct {
	params  config.Enhancement
	edge    imaging.EdgeOptions
	enhance imaging.EnhanceOptions
}

// New validates params and returns a Pipeline bound to them.
func New(params config.Enhancement) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid enhancement parameters: %w", err)
	}
	return &Pipeline{
		params:  params,
		edge:    params.EdgeOptions(),
		enhance: params.EnhanceOptions(),
	}, nil
}

// Params returns the parameters the pipeline was built with.
func (p *Pipeline) Params() config.Enhancement {
	return p.params
}

// Detection describes what the boundary search found in one image.
type Detection struct {
	// Boundary is the largest outer contour, or nil if the edge map was empty.
	Boundary *detection.Boundary `json:"boundary,omitempty"`

	// Polygon is the simplified boundary, whatever its vertex count.
	Polygon geometry.Contour `json:"polygon,omitempty"`

	// Quad holds the ordered corners; nil unless Polygon has four vertices.
	Quad *geometry.Quadrilateral `json:"quad,omitempty"`
}

// EdgeMap runs the edge-map stage alone.
func (p *Pipeline) EdgeMap(src *imaging.Raster) *imaging.Raster {
	return imaging.BuildEdgeMap(src, p.edge)
}

// Detect runs edge mapping, boundary finding, quadrilateral approximation
// and corner ordering.
func (p *Pipeline) Detect(src *imaging.Raster) Detection {
	return p.detectEdges(p.EdgeMap(src))
}

func (p *Pipeline) detectEdges(edges *imaging.Raster) Detection {
	var d Detection

	b, ok := detection.FindBoundary(edges)
	if !ok {
		return d
	}
	d.Boundary = b

	pts, poly, ok := detection.ApproximateQuadrilateral(b.Contour, p.params.EpsilonFraction)
	d.Polygon = poly
	if ok {
		q := geometry.OrderCorners(pts)
		d.Quad = &q
	}
	return d
}

// Rectify detects the page in src and warps it flat, or passes src through
// when no usable quadrilateral exists. It never fails.
func (p *Pipeline) Rectify(src *imaging.Raster) Rectification {
	d := p.Detect(src)
	if d.Quad == nil {
		return Rectification{Outcome: PassThrough, Image: src, Reason: ErrNoQuadrilateral}
	}

	warped, err := Rectify(src, *d.Quad)
	if err != nil {
		return Rectification{Outcome: PassThrough, Image: src, Reason: err}
	}
	return Rectification{Outcome: Rectified, Image: warped, Quad: *d.Quad}
}

// Enhance runs the contrast enhancer. Errors wrap ErrNumeric.
func (p *Pipeline) Enhance(r *imaging.Raster) (*imaging.Raster, error) {
	out, err := imaging.Enhance(r, p.enhance)
	if err != nil {
		if !errors.Is(err, ErrNumeric) {
			err = fmt.Errorf("%w: %v", ErrNumeric, err)
		}
		return nil, err
	}
	return out, nil
}

// Options selects optional outputs of Process.
type Options struct {
	// Visual also produces the human-facing sharpening variant.
	Visual bool
}

// Result is the outcome of a full pipeline run on one image.
type Result struct {
	Rectification

	// Enhanced is the denoised and equalized raster before sharpening.
	Enhanced *imaging.Raster

	// Legibility is the final output tuned for text recognition.
	Legibility *imaging.Raster

	// Visual is the final output tuned for people; nil unless requested.
	Visual *imaging.Raster

	// Before and After report luminance statistics of the rectified raster
	// and of the legibility output.
	Before imaging.ContrastStats
	After  imaging.ContrastStats
}

// Process runs every stage on src.
//
// The returned error is non-nil only for a numeric failure during
// enhancement; a missing quadrilateral is reported through
// Result.Outcome and Result.Reason.
func (p *Pipeline) Process(src *imaging.Raster, opts Options) (*Result, error) {
	res := &Result{Rectification: p.Rectify(src)}
	res.Before = imaging.MeasureContrast(res.Image)

	enhanced, err := p.Enhance(res.Image)
	if err != nil {
		return nil, err
	}
	res.Enhanced = enhanced

	res.Legibility = imaging.Sharpen(enhanced, imaging.SharpenLegibility)
	if opts.Visual {
		res.Visual = imaging.Sharpen(enhanced, imaging.SharpenVisual)
	}
	res.After = imaging.MeasureContrast(res.Legibility)
	return res, nil
}
