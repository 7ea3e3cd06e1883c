// Package server implements the MCP (Model Context Protocol) server that
// exposes page preparation as interactive tools.
//
// An MCP client can inspect each stage of the pipeline on a single
// photograph: the edge map, the detected outline and corners, the prepared
// page and its transcription. Batch processing of whole directories is done by
// the command line instead.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - page_load: Load a photograph and get its metadata
//
// Detection:
//   - page_edge_map: Binary edge map, thresholds overridable
//   - page_detect_boundary: Page outline, polygon, ordered corners, overlay
//
// Processing:
//   - page_prepare: Rectify, enhance and sharpen; write or preview
//   - page_ocr: Prepare for legibility and transcribe
//
// # Image Caching
//
// Decoded photographs are cached by path and reused across tool calls. The
// cache persists for the lifetime of the server process; page_load replaces
// the cached entry for its path, so calling it picks up a changed file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A page without a usable outline is not an error: page_prepare and page_ocr
// report outcome "pass_through" with a reason and process the photograph as
// is.
//
// # Usage
//
//	p, _ := pipeline.New(cfg.Enhancement)
//	srv := server.New(p, recognizer, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
