// Package ocr provides the text-recognition backends that read prepared pages.
//
// Two backends implement Recognizer:
//
//   - Tesseract: local recognition through the Tesseract engine (gosseract/v2)
//   - Vision: the Google Cloud Vision TEXT_DETECTION REST endpoint, keyed by an
//     API key
//
// Both accept JPEG or PNG bytes and return the recognized text verbatim. The
// text is never parsed or validated here.
//
// # Prerequisites
//
// The Tesseract backend needs Tesseract and its language data installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The Vision backend needs a Google Cloud project with the Vision API enabled
// and an API key, normally supplied through GOOGLE_API_KEY.
//
// # Empty Results
//
// A page on which nothing is recognized yields NoTextDetected rather than an
// empty string, so callers writing transcripts always produce a non-empty file.
package ocr
