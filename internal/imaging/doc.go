// Package imaging provides the raster type and the pixel-level stages of the
// page preparation pipeline.
//
// This package implements decoding and encoding, edge-map construction,
// perspective warping, contrast enhancement, sharpening and debug overlays.
// Every stage takes a *Raster and returns a new one; inputs are never
// modified, so a decoded raster can be shared between goroutines.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward.
//
// # Rasters
//
// A Raster holds 8-bit samples, row-major, with 1 (gray) or 3 (RGB)
// interleaved channels. Decoding always yields 3 channels after EXIF
// orientation has been applied; rasters built in memory may be gray and every
// stage preserves the channel count it is given.
//
// # Enhancement
//
// Enhance runs non-local-means denoising followed by contrast-limited
// adaptive histogram equalization. Color rasters are processed in CIE Lab so
// that only lightness is equalized and chroma passes through unchanged.
// Sharpen then applies one of two fixed 3x3 kernels selected by
// SharpenVariant.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are pure and may
// be called concurrently on shared inputs.
package imaging
