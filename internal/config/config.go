// Package config provides configuration loading and management for page-prep.
// It handles loading configuration from YAML files, environment overrides and
// default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/page-prep/internal/imaging"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvLogLevel = "PAGE_PREP_LOG_LEVEL"
	EnvOCR      = "PAGE_PREP_OCR"
	EnvAPIKey   = "GOOGLE_API_KEY"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Enhancement holds the fixed image-processing parameters. It is passed by
	// value into the pipeline and never changes during a run.
	Enhancement Enhancement `yaml:"enhancement"`

	Output Output `yaml:"output"`
	OCR    OCR    `yaml:"ocr"`
	Log    Log    `yaml:"log"`
}

// Enhancement groups every tunable of the detection and enhancement stages.
type Enhancement struct {
	Edge Edge `yaml:"edge"`

	// EpsilonFraction scales the boundary perimeter into the polygon
	// simplification tolerance.
	EpsilonFraction float64 `yaml:"epsilonFraction"`

	Denoise Denoise `yaml:"denoise"`
	CLAHE   CLAHE   `yaml:"clahe"`
}

// Edge configures edge-map construction.
type Edge struct {
	BlurSize   int     `yaml:"blurSize"`
	Low        float64 `yaml:"low"`
	High       float64 `yaml:"high"`
	L2Gradient bool    `yaml:"l2Gradient"`
}

// Denoise configures non-local-means filtering.
type Denoise struct {
	Strength       float64 `yaml:"strength"`
	ColorStrength  float64 `yaml:"colorStrength"`
	TemplateWindow int     `yaml:"templateWindow"`
	SearchWindow   int     `yaml:"searchWindow"`
}

// CLAHE configures adaptive histogram equalization of lightness.
type CLAHE struct {
	ClipLimit float64 `yaml:"clipLimit"`
	TilesX    int     `yaml:"tilesX"`
	TilesY    int     `yaml:"tilesY"`
}

// Output controls what the batch driver writes.
type Output struct {
	// Dir is the output directory; empty means alongside the inputs.
	Dir string `yaml:"dir"`

	// JPEGQuality is used for every written image (1-100).
	JPEGQuality int `yaml:"jpegQuality"`

	// Visual additionally writes the human-facing sharpening variant.
	Visual bool `yaml:"visual"`

	// Workers bounds how many images are processed concurrently.
	Workers int `yaml:"workers"`
}

// OCR selects the text-recognition backend.
type OCR struct {
	Enabled  bool   `yaml:"enabled"`
	Backend  string `yaml:"backend"`
	Language string `yaml:"language"`

	// APIKey is never read from or written to the file; it comes from
	// GOOGLE_API_KEY.
	APIKey string `yaml:"-"`
}

// Log controls diagnostic output.
type Log struct {
	// Level is "info" or "debug".
	Level string `yaml:"level"`
}

// DefaultEnhancement returns the parameters tuned for photographed pages:
// 5x5 blur, edge thresholds 75/200, epsilon 0.02 of the perimeter, denoise
// strength 10/10 over a 7x7 template and 21x21 search window, and CLAHE with
// clip limit 2.0 over an 8x8 grid.
func DefaultEnhancement() Enhancement {
	return Enhancement{
		Edge:            Edge{BlurSize: 5, Low: 75, High: 200},
		EpsilonFraction: 0.02,
		Denoise:         Denoise{Strength: 10, ColorStrength: 10, TemplateWindow: 7, SearchWindow: 21},
		CLAHE:           CLAHE{ClipLimit: 2.0, TilesX: 8, TilesY: 8},
	}
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Enhancement: DefaultEnhancement(),
		Output: Output{
			JPEGQuality: imaging.DefaultJPEGQuality,
			Workers:     1,
		},
		OCR: OCR{
			Enabled:  true,
			Backend:  "tesseract",
			Language: "eng",
		},
		Log: Log{Level: "info"},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration. Keys
// absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file, creating parent
// directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment settings onto c. getenv is normally
// os.Getenv.
//
//   - PAGE_PREP_LOG_LEVEL sets Log.Level
//   - PAGE_PREP_OCR selects the backend; "none" disables OCR
//   - GOOGLE_API_KEY supplies OCR.APIKey
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := strings.ToLower(strings.TrimSpace(getenv(EnvOCR))); v != "" {
		if v == "none" {
			c.OCR.Enabled = false
		} else {
			c.OCR.Enabled = true
			c.OCR.Backend = v
		}
	}
	if v := getenv(EnvAPIKey); v != "" {
		c.OCR.APIKey = v
	}
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Log.Level == "debug"
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.Enhancement.Validate(); err != nil {
		return fmt.Errorf("enhancement: %w", err)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output: jpeg quality must be in [1,100], got %d", c.Output.JPEGQuality)
	}
	if c.Output.Workers < 1 {
		return fmt.Errorf("output: workers must be at least 1, got %d", c.Output.Workers)
	}
	switch c.OCR.Backend {
	case "tesseract", "vision":
	default:
		return fmt.Errorf("ocr: unknown backend %q", c.OCR.Backend)
	}
	switch c.Log.Level {
	case "info", "debug":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	return nil
}

// Validate checks the enhancement parameters.
func (e Enhancement) Validate() error {
	if err := e.EdgeOptions().Validate(); err != nil {
		return err
	}
	if e.EpsilonFraction <= 0 || e.EpsilonFraction >= 1 {
		return fmt.Errorf("epsilon fraction must be in (0,1), got %v", e.EpsilonFraction)
	}
	return e.EnhanceOptions().Validate()
}

// EdgeOptions converts the edge section for imaging.BuildEdgeMap.
func (e Enhancement) EdgeOptions() imaging.EdgeOptions {
	return imaging.EdgeOptions{
		BlurSize:   e.Edge.BlurSize,
		Low:        e.Edge.Low,
		High:       e.Edge.High,
		L2Gradient: e.Edge.L2Gradient,
	}
}

// EnhanceOptions converts the denoise and CLAHE sections for imaging.Enhance.
func (e Enhancement) EnhanceOptions() imaging.EnhanceOptions {
	return imaging.EnhanceOptions{
		Denoise: imaging.DenoiseOptions{
			Strength:       e.Denoise.Strength,
			ColorStrength:  e.Denoise.ColorStrength,
			TemplateWindow: e.Denoise.TemplateWindow,
			SearchWindow:   e.Denoise.SearchWindow,
		},
		CLAHE: imaging.CLAHEOptions{
			ClipLimit: e.CLAHE.ClipLimit,
			TilesX:    e.CLAHE.TilesX,
			TilesY:    e.CLAHE.TilesY,
		},
	}
}
