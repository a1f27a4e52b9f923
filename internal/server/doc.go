// Package server implements the MCP (Model Context Protocol) server for
// pixelating images.
//
// This package provides a JSON-RPC 2.0 server that exposes mode-filter
// pixelation through the MCP protocol, so an assistant can blur out parts of
// screenshots and photos on request.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
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
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get color at pixel
//   - image_preview: Return a region as PNG, scaled without smoothing
//
// Pixelation:
//   - image_pixelate: Pixelate an image or region, write it or return a preview
//   - image_tile_modes: Report each tile's mode color without writing
//   - image_tile_grid: Draw the tile layout over the image
//
// Text:
//   - image_find_text: Locate text with Tesseract or an edge heuristic
//   - image_pixelate_text: Locate text and pixelate it
//
// # Progress
//
// When a tools/call request carries _meta.progressToken, image_pixelate sends
// notifications/progress messages while it works. They are written before the
// response to the request.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images keyed by path.
// Writing a result over a cached path evicts the stale entry.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
