package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/page-prep/internal/imaging"
	"github.com/ironsheep/page-prep/internal/ocr"
)

// Output file suffixes, appended to the input file's stem.
const (
	ProcessedSuffix = "_processed.jpg"
	VisualSuffix    = "_visual.jpg"
	TextSuffix      = "_text.txt"
)

// BatchOptions configures a Driver.
type BatchOptions struct {
	// InputDir is scanned (non-recursively) for supported images.
	InputDir string

	// OutputDir receives the outputs; empty means InputDir.
	OutputDir string

	// Workers bounds concurrent images; values below 1 mean 1.
	Workers int

	// JPEGQuality for written images; 0 means imaging.DefaultJPEGQuality.
	JPEGQuality int

	// Visual also writes the human-facing variant.
	Visual bool

	// Recognizer transcribes the legibility output; nil skips OCR.
	Recognizer ocr.Recognizer

	// Logger receives per-image progress; nil uses the standard logger.
	Logger *log.Logger
}

// ImageResult reports what happened to one input file.
type ImageResult struct {
	Input     string        `json:"input"`
	Processed string        `json:"processed,omitempty"`
	Visual    string        `json:"visual,omitempty"`
	Text      string        `json:"text,omitempty"`
	Outcome   Outcome       `json:"-"`
	Reason    string        `json:"reason,omitempty"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// Failed reports whether any step for the image returned an error. Outputs
// written before the failing step are kept.
func (r ImageResult) Failed() bool {
	return r.Err != nil
}

// Summary aggregates a batch.
type Summary struct {
	Total      int `json:"total"`
	Rectified  int `json:"rectified"`
	PassedOn   int `json:"passed_through"`
	Failed     int `json:"failed"`
	Unreadable int `json:"unreadable"` // subset of Failed
	Recognized int `json:"recognized"`
}

// Driver processes every image in a directory through a Pipeline.
type Driver struct {
	pipeline *Pipeline
	opts     BatchOptions
	logger   *log.Logger
}

// NewDriver returns a Driver for p with opts normalized.
func NewDriver(p *Pipeline, opts BatchOptions) *Driver {
	if opts.OutputDir == "" {
		opts.OutputDir = opts.InputDir
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.JPEGQuality == 0 {
		opts.JPEGQuality = imaging.DefaultJPEGQuality
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{pipeline: p, opts: opts, logger: logger}
}

// ListImages returns the supported image files directly inside dir, sorted
// by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run processes every image in the input directory.
//
// Returns:
//   - []ImageResult: One entry per input, in sorted input order. Images not
//     started because ctx was cancelled carry ctx.Err().
//   - Summary: Counts over the results.
//   - error: Non-nil only if the directories cannot be read or created.
//
// Per-image failures never abort the batch. Cancellation is honoured between
// images; an image already in flight runs to completion.
func (d *Driver) Run(ctx context.Context) ([]ImageResult, Summary, error) {
	paths, err := ListImages(d.opts.InputDir)
	if err != nil {
		return nil, Summary{}, err
	}
	if err := os.MkdirAll(d.opts.OutputDir, 0o755); err != nil {
		return nil, Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(paths) == 0 {
		d.logger.Printf("No image files found in %s", d.opts.InputDir)
		return nil, Summary{}, nil
	}
	d.logger.Printf("Found %d images to process", len(paths))

	results := make([]ImageResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(d.opts.Workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = d.ProcessFile(ctx, paths[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		results[i] = ImageResult{Input: paths[i], Err: ctx.Err()}
	}

	summary := Summarize(results)
	d.logger.Printf("Processing complete: %d images, %d rectified, %d passed through, %d failed (%d unreadable)",
		summary.Total, summary.Rectified, summary.PassedOn, summary.Failed, summary.Unreadable)
	return results, summary, nil
}

// ProcessFile runs the pipeline on one file and writes its outputs.
func (d *Driver) ProcessFile(ctx context.Context, path string) (res ImageResult) {
	start := time.Now()
	res = ImageResult{Input: path}
	defer func() { res.Duration = time.Since(start) }()

	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	src, err := imaging.LoadFile(path)
	if err != nil {
		res.Err = err
		d.logger.Printf("Error: could not read image %s: %v", name, err)
		return res
	}

	out, err := d.pipeline.Process(src, Options{Visual: d.opts.Visual})
	if err != nil {
		res.Err = err
		d.logger.Printf("Error processing %s: %v", name, err)
		return res
	}
	res.Outcome = out.Outcome
	if out.Reason != nil {
		res.Reason = out.Reason.Error()
		d.logger.Printf("%s: %v, passing through", name, out.Reason)
	}

	res.Processed = filepath.Join(d.opts.OutputDir, stem+ProcessedSuffix)
	if err := imaging.SaveJPEG(res.Processed, out.Legibility, d.opts.JPEGQuality); err != nil {
		res.Err = err
		res.Processed = ""
		d.logger.Printf("Error writing %s: %v", name, err)
		return res
	}

	if out.Visual != nil {
		res.Visual = filepath.Join(d.opts.OutputDir, stem+VisualSuffix)
		if err := imaging.SaveJPEG(res.Visual, out.Visual, d.opts.JPEGQuality); err != nil {
			res.Err = err
			res.Visual = ""
			d.logger.Printf("Error writing visual variant of %s: %v", name, err)
			return res
		}
	}

	if d.opts.Recognizer == nil {
		d.logger.Printf("Processed %s -> %s (OCR skipped)", name, filepath.Base(res.Processed))
		return res
	}

	if err := d.recognize(ctx, out.Legibility, &res, stem); err != nil {
		res.Err = err
		d.logger.Printf("OCR error on %s: %v", name, err)
		return res
	}
	d.logger.Printf("Processed %s -> %s, %s", name, filepath.Base(res.Processed), filepath.Base(res.Text))
	return res
}

func (d *Driver) recognize(ctx context.Context, r *imaging.Raster, res *ImageResult, stem string) error {
	data, err := imaging.JPEGBytes(r, d.opts.JPEGQuality)
	if err != nil {
		return fmt.Errorf("failed to encode for OCR: %w", err)
	}

	text, err := d.opts.Recognizer.Recognize(ctx, data)
	if err != nil {
		return fmt.Errorf("%s OCR failed: %w", d.opts.Recognizer.Name(), err)
	}

	path := filepath.Join(d.opts.OutputDir, stem+TextSuffix)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	res.Text = path
	return nil
}

// Summarize counts outcomes over results.
func Summarize(results []ImageResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Text != "" {
			s.Recognized++
		}
		switch {
		case r.Failed():
			s.Failed++
			if r.IsDecodeFailure() {
				s.Unreadable++
			}
		case r.Outcome == Rectified:
			s.Rectified++
		default:
			s.PassedOn++
		}
	}
	return s
}

// IsDecodeFailure reports whether r failed because its input could not be
// decoded.
func (r ImageResult) IsDecodeFailure() bool {
	return errors.Is(r.Err, ErrDecode)
}
