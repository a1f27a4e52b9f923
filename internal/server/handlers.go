package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"regexp"
	"runtime"
	"sync"

	"github.com/ironsheep/pixelise-mcp/internal/imaging"
	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
	"github.com/ironsheep/pixelise-mcp/internal/ocr"
	"github.com/ironsheep/pixelise-mcp/internal/redact"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_pixelate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token. When present, long-running
	// tools send notifications/progress messages tagged with it.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

// progressFunc matches mosaic.Options.Progress.
type progressFunc func(done, total int)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var progress progressFunc
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		progress = s.progressReporter(params.Meta.ProgressToken)
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments, progress)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
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
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging or redact function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, progress progressFunc) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_preview":
		return s.handleImagePreview(args)

	// Pixelation
	case "image_pixelate":
		return s.handleImagePixelate(ctx, args, progress)
	case "image_tile_modes":
		return s.handleImageTileModes(args)
	case "image_tile_grid":
		return s.handleImageTileGrid(args)

	// Text
	case "image_find_text":
		return s.handleImageFindText(args)
	case "image_pixelate_text":
		return s.handleImagePixelateText(ctx, args)

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

// progressReporter returns a progress callback that sends at most about a
// hundred notifications per call, always including the last tile. Workers may
// report out of order; values not above the last one sent are dropped so the
// client sees progress increase.
func (s *Server) progressReporter(token interface{}) progressFunc {
	var (
		mu   sync.Mutex
		sent int
	)
	return func(done, total int) {
		step := max(1, total/100)
		if done != total && done%step != 0 {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if done <= sent {
			return
		}
		sent = done
		s.notify("notifications/progress", map[string]interface{}{
			"progressToken": token,
			"progress":      done,
			"total":         total,
		})
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imagePreviewArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region,omitempty"`
	Scale  float64         `json:"scale"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, a.Region, a.Scale)
}

// === Pixelation Handlers ===

// tileArgs are the tiling arguments shared by the pixelation tools.
type tileArgs struct {
	TileWidth  *int   `json:"tile_width"`
	TileHeight *int   `json:"tile_height"`
	Remainder  string `json:"remainder"`
	Workers    int    `json:"workers"`
}

// options converts the arguments to mosaic options. Missing tile sizes take
// the default; given ones must be positive. The worker count is capped at one
// per CPU, which is also what zero selects.
func (a tileArgs) options() (mosaic.Options, error) {
	opts := mosaic.DefaultOptions()
	if a.TileWidth != nil {
		opts.TileWidth = *a.TileWidth
	}
	if a.TileHeight != nil {
		opts.TileHeight = *a.TileHeight
	}
	if opts.TileWidth <= 0 || opts.TileHeight <= 0 {
		return opts, fmt.Errorf("%w: tile size %dx%d must be positive", mosaic.ErrInvalidArgument, opts.TileWidth, opts.TileHeight)
	}
	rem, err := mosaic.ParseRemainder(a.Remainder)
	if err != nil {
		return opts, err
	}
	opts.Remainder = rem

	if a.Workers < 0 {
		return opts, fmt.Errorf("%w: invalid worker count %d", mosaic.ErrInvalidArgument, a.Workers)
	}
	cpus := runtime.GOMAXPROCS(0)
	opts.Workers = min(a.Workers, cpus)
	if opts.Workers == 0 {
		opts.Workers = cpus
	}
	return opts, nil
}

// outputArgs say where a pixelated image goes.
type outputArgs struct {
	// Output is the file to write. Empty returns a base64 PNG preview instead.
	Output string `json:"output"`
	// Format overrides the format implied by Output's extension.
	Format string `json:"format"`
	// PreviewScale scales the preview returned when Output is empty.
	PreviewScale float64 `json:"preview_scale"`
}

// PixelateResult is returned by image_pixelate.
type PixelateResult struct {
	Tiles   int            `json:"tiles"`
	Columns int            `json:"columns"`
	Rows    int            `json:"rows"`
	Covered imaging.Region `json:"covered"`
	Output  string         `json:"output,omitempty"`
	Format  string         `json:"format,omitempty"`

	Preview *imaging.PreviewResult `json:"preview,omitempty"`
}

type imagePixelateArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region,omitempty"`
	tileArgs
	outputArgs
}

func (s *Server) handleImagePixelate(ctx context.Context, args json.RawMessage, progress progressFunc) (interface{}, error) {
	var a imagePixelateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	opts.Progress = progress
	opts.Logger = s.logger.With("path", a.Path)

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, res, err := imaging.PixelateImage(ctx, img, a.Region, opts)
	if err != nil {
		return nil, err
	}

	result := &PixelateResult{
		Tiles:   res.Tiles,
		Columns: res.Grid.Columns(),
		Rows:    res.Grid.Rows(),
		Covered: imaging.RegionOf(res.Covered),
	}
	if err := s.deliver(out, a.outputArgs, &result.Output, &result.Format, &result.Preview); err != nil {
		return nil, err
	}
	return result, nil
}

// deliver writes img to the requested output, or renders a preview when no
// output path was given.
func (s *Server) deliver(img image.Image, a outputArgs, output, format *string, preview **imaging.PreviewResult) error {
	if a.Output == "" {
		scale := a.PreviewScale
		if scale == 0 {
			scale = 1.0
		}
		p, err := imaging.Preview(img, nil, scale)
		if err != nil {
			return err
		}
		*preview = p
		return nil
	}

	var f imaging.Format
	var err error
	if a.Format != "" {
		f, err = imaging.ParseFormat(a.Format)
	} else {
		f, err = imaging.FormatFromPath(a.Output)
	}
	if err != nil {
		return err
	}
	if err := imaging.Save(img, a.Output, f); err != nil {
		return err
	}
	// A cached decode of the old file would hide the new content.
	s.cache.Evict(a.Output)
	s.logger.Info("wrote pixelated image", "output", a.Output, "format", f)

	*output = a.Output
	*format = string(f)
	return nil
}

type imageTileModesArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region,omitempty"`
	tileArgs
}

func (s *Server) handleImageTileModes(args json.RawMessage) (interface{}, error) {
	var a imageTileModesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.TileModes(img, a.Region, opts.TileWidth, opts.TileHeight, opts.Remainder)
}

type imageTileGridArgs struct {
	Path            string          `json:"path"`
	Region          *imaging.Region `json:"region,omitempty"`
	ShowCoordinates bool            `json:"show_coordinates"`
	GridColor       string          `json:"grid_color"`
	tileArgs
}

func (s *Server) handleImageTileGrid(args json.RawMessage) (interface{}, error) {
	var a imageTileGridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.TileGridOverlay(img, a.Region, opts.TileWidth, opts.TileHeight, opts.Remainder, a.ShowCoordinates, a.GridColor)
}

// === Text Handlers ===

// textArgs select how text is found.
type textArgs struct {
	// Method is "ocr" (Tesseract, the default) or "heuristic" (edge density).
	Method string `json:"method"`
	// Granularity is "word" (default) or "block". OCR only.
	Granularity string `json:"granularity"`
	// Pattern keeps only text matching this regular expression. OCR only.
	Pattern       string          `json:"pattern"`
	Language      string          `json:"language"`
	MinConfidence float64         `json:"min_confidence"`
	Region        *imaging.Region `json:"region,omitempty"`
}

func (a textArgs) redactOptions() (redact.Options, error) {
	method, err := redact.ParseMethod(a.Method)
	if err != nil {
		return redact.Options{}, err
	}
	level, err := ocr.ParseLevel(a.Granularity)
	if err != nil {
		return redact.Options{}, err
	}
	opts := redact.Options{
		Method:        method,
		Level:         level,
		Language:      a.Language,
		MinConfidence: a.MinConfidence,
		Region:        a.Region,
	}
	if a.Pattern != "" {
		re, err := regexp.Compile(a.Pattern)
		if err != nil {
			return redact.Options{}, fmt.Errorf("invalid pattern: %w", err)
		}
		opts.Match = re
	}
	return opts, nil
}

// FindTextResult is returned by image_find_text.
type FindTextResult struct {
	Method string       `json:"method"`
	Hits   []redact.Hit `json:"hits"`
	Count  int          `json:"count"`
}

// findText locates text in img with the requested method.
func (s *Server) findText(img image.Image, a textArgs) (*FindTextResult, error) {
	opts, err := a.redactOptions()
	if err != nil {
		return nil, err
	}
	hits, err := redact.Find(img, opts)
	if err != nil {
		return nil, err
	}
	return &FindTextResult{Method: string(opts.Method), Hits: hits, Count: len(hits)}, nil
}

type imageFindTextArgs struct {
	Path string `json:"path"`
	textArgs
}

func (s *Server) handleImageFindText(args json.RawMessage) (interface{}, error) {
	var a imageFindTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.findText(img, a.textArgs)
}

// PixelateTextResult is returned by image_pixelate_text.
type PixelateTextResult struct {
	Method string       `json:"method"`
	Hits   []redact.Hit `json:"hits"`
	Count  int          `json:"count"`
	Tiles  int          `json:"tiles"`
	Output string       `json:"output,omitempty"`
	Format string       `json:"format,omitempty"`

	Preview *imaging.PreviewResult `json:"preview,omitempty"`
}

type imagePixelateTextArgs struct {
	Path string `json:"path"`
	// Padding grows each text box by this many pixels before pixelating.
	Padding int `json:"padding"`
	textArgs
	tileArgs
	outputArgs
}

func (s *Server) handleImagePixelateText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagePixelateTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Padding < 0 {
		return nil, fmt.Errorf("padding must be >= 0, got %d", a.Padding)
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger.With("path", a.Path)

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	found, err := s.findText(img, a.textArgs)
	if err != nil {
		return nil, err
	}

	out, results, err := imaging.PixelateRegions(ctx, img, redact.Regions(found.Hits, a.Padding), opts)
	if err != nil {
		return nil, err
	}

	result := &PixelateTextResult{
		Method: found.Method,
		Hits:   found.Hits,
		Count:  found.Count,
	}
	for _, r := range results {
		result.Tiles += r.Tiles
	}
	s.logger.Debug("pixelated text", "path", a.Path, "hits", found.Count, "tiles", result.Tiles)

	if err := s.deliver(out, a.outputArgs, &result.Output, &result.Format, &result.Preview); err != nil {
		return nil, err
	}
	return result, nil
}
