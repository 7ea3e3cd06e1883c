package imaging

import (
	"image/color"
	"testing"
)

func lowContrastRaster(width, height, channels int) *Raster {
	r := NewRaster(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(100 + (x*7+y*3)%16)
			for c := 0; c < channels; c++ {
				r.Set(x, y, c, v)
			}
		}
	}
	return r
}

func TestEnhance_PreservesShape(t *testing.T) {
	tests := []struct {
		name string
		src  *Raster
	}{
		{"color", createPatternRaster(48, 36)},
		{"gray", lowContrastRaster(40, 30, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Enhance(tt.src, DefaultEnhanceOptions())
			if err != nil {
				t.Fatalf("Enhance failed: %v", err)
			}
			if !sameShape(out, tt.src) {
				t.Errorf("shape: got %dx%dx%d, want %dx%dx%d",
					out.Width, out.Height, out.Channels, tt.src.Width, tt.src.Height, tt.src.Channels)
			}
		})
	}
}

func TestEnhance_FlatStaysFlat(t *testing.T) {
	src := Filled(40, 32, 3, color.RGBA{180, 170, 150, 255})
	out, err := Enhance(src, DefaultEnhanceOptions())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	for i := 0; i < len(out.Pix); i += 3 {
		if out.Pix[i] != out.Pix[0] || out.Pix[i+1] != out.Pix[1] || out.Pix[i+2] != out.Pix[2] {
			t.Fatalf("pixel %d differs from pixel 0", i/3)
		}
	}
}

func TestEnhance_RaisesLocalContrast(t *testing.T) {
	opts := DefaultEnhanceOptions()
	opts.Denoise.Strength = 0
	opts.Denoise.ColorStrength = 0

	for _, ch := range []int{1, 3} {
		src := lowContrastRaster(128, 96, ch)
		out, err := Enhance(src, opts)
		if err != nil {
			t.Fatalf("channels=%d: Enhance failed: %v", ch, err)
		}
		before := MeasureContrast(src)
		after := MeasureContrast(out)
		if after.StdDev <= before.StdDev {
			t.Errorf("channels=%d: stddev %.2f -> %.2f, want increase", ch, before.StdDev, after.StdDev)
		}
	}
}

func TestEnhance_DoesNotModifyInput(t *testing.T) {
	src := createPatternRaster(24, 24)
	before := src.Clone()
	if _, err := Enhance(src, DefaultEnhanceOptions()); err != nil {
		t.Fatal(err)
	}
	for i := range src.Pix {
		if src.Pix[i] != before.Pix[i] {
			t.Fatal("Enhance modified its input")
		}
	}
}

func TestEnhanceOptionsValidate(t *testing.T) {
	bad := func(mut func(*EnhanceOptions)) EnhanceOptions {
		o := DefaultEnhanceOptions()
		mut(&o)
		return o
	}
	tests := []struct {
		name    string
		opts    EnhanceOptions
		wantErr bool
	}{
		{"defaults", DefaultEnhanceOptions(), false},
		{"denoise disabled", bad(func(o *EnhanceOptions) { o.Denoise.Strength = 0 }), false},
		{"negative strength", bad(func(o *EnhanceOptions) { o.Denoise.ColorStrength = -1 }), true},
		{"even template", bad(func(o *EnhanceOptions) { o.Denoise.TemplateWindow = 6 }), true},
		{"even search", bad(func(o *EnhanceOptions) { o.Denoise.SearchWindow = 20 }), true},
		{"negative clip", bad(func(o *EnhanceOptions) { o.CLAHE.ClipLimit = -2 }), true},
		{"empty grid", bad(func(o *EnhanceOptions) { o.CLAHE.TilesX = 0 }), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeasureContrast(t *testing.T) {
	flat := MeasureContrast(Filled(10, 10, 1, color.RGBA{50, 50, 50, 255}))
	if flat.Mean != 50 || flat.StdDev != 0 {
		t.Errorf("flat: got %+v, want mean 50 stddev 0", flat)
	}

	half := NewRaster(2, 1, 1)
	half.Pix[0], half.Pix[1] = 0, 200
	s := MeasureContrast(half)
	if s.Mean != 100 {
		t.Errorf("mean: got %v, want 100", s.Mean)
	}
	if s.StdDev < 141 || s.StdDev > 142 {
		t.Errorf("stddev: got %v, want ~141.42", s.StdDev)
	}

	if got := MeasureContrast(NewRaster(1, 1, 1)); got.StdDev != 0 {
		t.Errorf("single pixel stddev: got %v, want 0", got.StdDev)
	}
}
