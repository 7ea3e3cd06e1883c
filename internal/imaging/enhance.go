package imaging

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// EnhanceOptions configures Enhance.
type EnhanceOptions struct {
	Denoise DenoiseOptions
	CLAHE   CLAHEOptions
}

// DefaultEnhanceOptions returns the settings used for page photographs.
func DefaultEnhanceOptions() EnhanceOptions {
	return EnhanceOptions{
		Denoise: DefaultDenoiseOptions(),
		CLAHE:   DefaultCLAHEOptions(),
	}
}

// Validate checks option ranges.
func (o EnhanceOptions) Validate() error {
	d := o.Denoise
	if d.Strength < 0 || d.ColorStrength < 0 {
		return fmt.Errorf("denoise strengths must be non-negative, got %v/%v", d.Strength, d.ColorStrength)
	}
	if d.TemplateWindow < 1 || d.TemplateWindow%2 == 0 {
		return fmt.Errorf("template window must be a positive odd number, got %d", d.TemplateWindow)
	}
	if d.SearchWindow < 1 || d.SearchWindow%2 == 0 {
		return fmt.Errorf("search window must be a positive odd number, got %d", d.SearchWindow)
	}
	if o.CLAHE.ClipLimit < 0 {
		return fmt.Errorf("clip limit must be non-negative, got %v", o.CLAHE.ClipLimit)
	}
	if o.CLAHE.TilesX < 1 || o.CLAHE.TilesY < 1 {
		return fmt.Errorf("tile grid must be at least 1x1, got %dx%d", o.CLAHE.TilesX, o.CLAHE.TilesY)
	}
	return nil
}

// Enhance denoises src and equalizes its local contrast.
//
// For a 3-channel raster the work happens in Lab: lightness and chroma are
// denoised separately, CLAHE is applied to lightness alone, and the untouched
// chroma is recombined before converting back to RGB. A 1-channel raster is
// denoised and equalized directly.
//
// The output always has the same dimensions and channel count as src.
// Returns ErrNumeric if the color conversion fails.
func Enhance(src *Raster, opts EnhanceOptions) (*Raster, error) {
	c := opts.CLAHE

	if src.Channels == 1 {
		d := DenoisePlanes([][]uint8{src.Pix}, src.Width, src.Height,
			opts.Denoise.Strength, opts.Denoise.TemplateWindow, opts.Denoise.SearchWindow)
		out := NewRaster(src.Width, src.Height, 1)
		out.Pix = EqualizeAdaptive(d[0], src.Width, src.Height, c.ClipLimit, c.TilesX, c.TilesY)
		return out, nil
	}

	lab, err := ToLab(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to lab: %w", err)
	}
	lab = denoiseLab(lab, opts.Denoise)
	lab.L = EqualizeAdaptive(lab.L, lab.Width, lab.Height, c.ClipLimit, c.TilesX, c.TilesY)

	out, err := lab.ToRaster()
	if err != nil {
		return nil, fmt.Errorf("failed to convert from lab: %w", err)
	}
	return out, nil
}

// ContrastStats summarizes the luminance distribution of a raster.
type ContrastStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// MeasureContrast returns the mean and standard deviation of BT.601
// luminance over every pixel of r.
func MeasureContrast(r *Raster) ContrastStats {
	gray := Grayscale(r)
	if len(gray.Pix) == 0 {
		return ContrastStats{}
	}
	values := make([]float64, len(gray.Pix))
	for i, v := range gray.Pix {
		values[i] = float64(v)
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	return ContrastStats{Mean: mean, StdDev: std}
}
