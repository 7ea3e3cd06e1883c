package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/page-prep/internal/detection"
	"github.com/ironsheep/page-prep/internal/geometry"
	"github.com/ironsheep/page-prep/internal/imaging"
	"github.com/ironsheep/page-prep/internal/pipeline"
)

// defaultPreviewDimension bounds images returned inline when the caller does
// not say otherwise.
const defaultPreviewDimension = 1024

// ErrOCRDisabled is returned by page_ocr when the server has no recognizer.
var ErrOCRDisabled = errors.New("OCR is disabled (set PAGE_PREP_OCR or enable ocr in the configuration)")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "page_load", "page_prepare").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads the page from cache
//  4. Runs the pipeline stages it reports on
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "page_load":
		return s.handlePageLoad(args)

	// Detection
	case "page_edge_map":
		return s.handlePageEdgeMap(args)
	case "page_detect_boundary":
		return s.handlePageDetectBoundary(args)

	// Processing
	case "page_prepare":
		return s.handlePagePrepare(args)
	case "page_ocr":
		return s.handlePageOCR(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type pageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePageLoad(args json.RawMessage) (interface{}, error) {
	var a pageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	// page_load always reads the file again; later tools reuse what it cached.
	s.cache.Evict(a.Path)
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type pageEdgeMapArgs struct {
	Path          string   `json:"path"`
	ThresholdLow  *float64 `json:"threshold_low"`
	ThresholdHigh *float64 `json:"threshold_high"`
	MaxDimension  *int     `json:"max_dimension"`
}

// EdgeMapResult is returned by page_edge_map.
type EdgeMapResult struct {
	ThresholdLow  float64               `json:"threshold_low"`
	ThresholdHigh float64               `json:"threshold_high"`
	EdgePixels    int                   `json:"edge_pixels"`
	EdgeFraction  float64               `json:"edge_fraction"`
	Image         *imaging.EncodedImage `json:"image"`
}

func (s *Server) handlePageEdgeMap(args json.RawMessage) (interface{}, error) {
	var a pageEdgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.pipeline.Params().EdgeOptions()
	if a.ThresholdLow != nil {
		opts.Low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		opts.High = *a.ThresholdHigh
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	edges := imaging.BuildEdgeMap(src, opts)

	count := 0
	for _, v := range edges.Pix {
		if v != 0 {
			count++
		}
	}

	img, err := imaging.EncodeRasterBase64(edges, previewDimension(a.MaxDimension))
	if err != nil {
		return nil, err
	}

	res := &EdgeMapResult{
		ThresholdLow:  opts.Low,
		ThresholdHigh: opts.High,
		EdgePixels:    count,
		Image:         img,
	}
	if n := len(edges.Pix); n > 0 {
		res.EdgeFraction = float64(count) / float64(n)
	}
	return res, nil
}

type pageDetectBoundaryArgs struct {
	Path           string `json:"path"`
	Overlay        bool   `json:"overlay"`
	Color          string `json:"color"`
	Thickness      int    `json:"thickness"`
	IncludeContour bool   `json:"include_contour"`
	MaxDimension   *int   `json:"max_dimension"`
}

// BoundaryResult is returned by page_detect_boundary.
type BoundaryResult struct {
	// Found is false when the edge map held no contour at all.
	Found bool `json:"found"`

	ContourPoints int               `json:"contour_points"`
	Contour       geometry.Contour  `json:"contour,omitempty"`
	Area          float64           `json:"area"`
	Perimeter     float64           `json:"perimeter"`
	Bounds        *detection.Bounds `json:"bounds,omitempty"`
	Candidates    int               `json:"candidates"`

	// Vertices is the vertex count of the simplified polygon; only 4 yields
	// Corners.
	Vertices int                     `json:"vertices"`
	Polygon  geometry.Contour        `json:"polygon,omitempty"`
	Corners  *geometry.Quadrilateral `json:"corners,omitempty"`

	// RectifiedWidth and RectifiedHeight are the output size a rectification
	// would produce.
	RectifiedWidth  int `json:"rectified_width,omitempty"`
	RectifiedHeight int `json:"rectified_height,omitempty"`

	Overlay *imaging.EncodedImage `json:"overlay,omitempty"`
}

func (s *Server) handlePageDetectBoundary(args json.RawMessage) (interface{}, error) {
	var a pageDetectBoundaryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = imaging.DefaultOverlayColor
	}
	if a.Thickness == 0 {
		a.Thickness = 3
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	d := s.pipeline.Detect(src)
	res := &BoundaryResult{Found: d.Boundary != nil}
	if d.Boundary == nil {
		return res, nil
	}

	b := d.Boundary
	res.ContourPoints = len(b.Contour)
	res.Area = b.Area
	res.Perimeter = b.Perimeter
	res.Bounds = &b.Bounds
	res.Candidates = b.Candidates
	res.Vertices = len(d.Polygon)
	res.Polygon = d.Polygon
	res.Corners = d.Quad
	if a.IncludeContour {
		res.Contour = b.Contour
	}
	if d.Quad != nil {
		res.RectifiedWidth, res.RectifiedHeight = d.Quad.Size()
	}

	if a.Overlay {
		opts := imaging.OverlayOptions{Color: a.Color, Thickness: a.Thickness}
		pts := []geometry.Point2D(d.Polygon)
		if d.Quad != nil {
			q := d.Quad.Points()
			pts = q[:]
			opts.Labels = imaging.QuadLabels
		}
		img, err := imaging.EncodeBase64(imaging.DrawOutline(src, pts, opts), previewDimension(a.MaxDimension))
		if err != nil {
			return nil, err
		}
		res.Overlay = img
	}
	return res, nil
}

// === Processing Handlers ===

type pagePrepareArgs struct {
	Path         string `json:"path"`
	OutputPath   string `json:"output_path"`
	Variant      string `json:"variant"`
	Quality      int    `json:"quality"`
	MaxDimension *int   `json:"max_dimension"`
}

// PrepareResult is returned by page_prepare.
type PrepareResult struct {
	// Outcome is "rectified" or "pass_through".
	Outcome string `json:"outcome"`

	// Reason explains a pass-through.
	Reason string `json:"reason,omitempty"`

	Corners *geometry.Quadrilateral `json:"corners,omitempty"`
	Variant string                  `json:"variant"`
	Width   int                     `json:"width"`
	Height  int                     `json:"height"`

	ContrastBefore imaging.ContrastStats `json:"contrast_before"`
	ContrastAfter  imaging.ContrastStats `json:"contrast_after"`

	// OutputPath is set when the JPEG was written to disk; Image otherwise.
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handlePagePrepare(args json.RawMessage) (interface{}, error) {
	var a pagePrepareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	variant, err := imaging.ParseSharpenVariant(a.Variant)
	if err != nil {
		return nil, err
	}
	if a.Quality == 0 {
		a.Quality = imaging.DefaultJPEGQuality
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, err := s.pipeline.Process(src, pipeline.Options{Visual: variant == imaging.SharpenVisual})
	if err != nil {
		return nil, err
	}

	final := out.Legibility
	if variant == imaging.SharpenVisual {
		final = out.Visual
	}

	res := &PrepareResult{
		Outcome:        out.Outcome.String(),
		Variant:        variant.String(),
		Width:          final.Width,
		Height:         final.Height,
		ContrastBefore: out.Before,
		ContrastAfter:  out.After,
	}
	if out.Reason != nil {
		res.Reason = out.Reason.Error()
	}
	if out.Outcome == pipeline.Rectified {
		q := out.Quad
		res.Corners = &q
	}

	if a.OutputPath != "" {
		if err := imaging.SaveJPEG(a.OutputPath, final, a.Quality); err != nil {
			return nil, err
		}
		res.OutputPath = a.OutputPath
		return res, nil
	}

	img, err := imaging.EncodeRasterBase64(final, previewDimension(a.MaxDimension))
	if err != nil {
		return nil, err
	}
	res.Image = img
	return res, nil
}

type pageOCRArgs struct {
	Path string `json:"path"`
}

// OCRResult is returned by page_ocr.
type OCRResult struct {
	Text    string `json:"text"`
	Backend string `json:"backend"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

func (s *Server) handlePageOCR(args json.RawMessage) (interface{}, error) {
	var a pageOCRArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.recognizer == nil {
		return nil, ErrOCRDisabled
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, err := s.pipeline.Process(src, pipeline.Options{})
	if err != nil {
		return nil, err
	}

	data, err := imaging.JPEGBytes(out.Legibility, imaging.DefaultJPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode for OCR: %w", err)
	}
	text, err := s.recognizer.Recognize(context.Background(), data)
	if err != nil {
		return nil, fmt.Errorf("%s OCR failed: %w", s.recognizer.Name(), err)
	}

	res := &OCRResult{
		Text:    text,
		Backend: s.recognizer.Name(),
		Outcome: out.Outcome.String(),
	}
	if out.Reason != nil {
		res.Reason = out.Reason.Error()
	}
	return res, nil
}

// previewDimension resolves an optional max_dimension argument.
func previewDimension(v *int) int {
	if v == nil {
		return defaultPreviewDimension
	}
	return *v
}
