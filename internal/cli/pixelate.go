// Package cli implements the pixelise batch command line.
package cli

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/pixelise-mcp/internal/imaging"
	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
	"github.com/ironsheep/pixelise-mcp/internal/ocr"
	"github.com/ironsheep/pixelise-mcp/internal/parallel"
	"github.com/ironsheep/pixelise-mcp/internal/redact"
)

type PixelateCmd struct {
	Scan        string `help:"Source folder to scan" default:"."`
	Dest        string `help:"Destination folder for pixelated pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"pixelated"`
	TileWidth   int    `help:"Tile width in pixels" default:"4" group:"tiles"`
	TileHeight  int    `help:"Tile height in pixels" default:"4" group:"tiles"`
	Remainder   string `help:"Partial tiles at the right and bottom edges: clip pixelates them, drop leaves them unchanged" enum:"clip,drop" default:"clip" group:"tiles"`
	Region      string `help:"Only pixelate this region, given as x1,y1,x2,y2. Clipped to each image." placeholder:"X1,Y1,X2,Y2"`
	Text        string `help:"Pixelate text instead of a fixed region: none, ocr (Tesseract) or heuristic (edge density)" enum:"none,ocr,heuristic" default:"none" group:"text"`
	Granularity string `help:"OCR box size" enum:"word,block" default:"word" group:"text"`
	Pattern     string `help:"Only pixelate OCR text matching this regular expression" group:"text"`
	Padding     int    `help:"Pixels added around each text box" default:"0" group:"text"`
	Language    string `help:"Tesseract language code" default:"eng" group:"text"`
	Format      string `help:"Output format of pixelated image" enum:"same,png,jpeg,gif,bmp,tiff,webp,pxb" default:"same"`
	Workers     int    `help:"Pictures processed concurrently. 0 uses one per CPU." default:"0"`
	TileWorkers int    `help:"Tiles processed concurrently within each picture" default:"1"`

	rect      *image.Rectangle `kong:"-"`
	remainder mosaic.Remainder `kong:"-"`
	match     *regexp.Regexp   `kong:"-"`
}

func (c *PixelateCmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	switch {
	case c.TileWidth < 1:
		return fmt.Errorf("invalid tile width: %d", c.TileWidth)
	case c.TileHeight < 1:
		return fmt.Errorf("invalid tile height: %d", c.TileHeight)
	case c.Padding < 0:
		return fmt.Errorf("invalid padding: %d", c.Padding)
	case c.Workers < 0:
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	case c.TileWorkers < 0:
		return fmt.Errorf("invalid tile worker count: %d", c.TileWorkers)
	}

	if c.remainder, err = mosaic.ParseRemainder(c.Remainder); err != nil {
		return err
	}

	if c.Region != "" {
		if c.Text != "none" {
			return fmt.Errorf("--region and --text cannot be combined")
		}
		r, err := parseRegion(c.Region)
		if err != nil {
			return err
		}
		c.rect = &r
	}

	if c.Pattern != "" {
		if c.Text != "ocr" {
			return fmt.Errorf("--pattern requires --text=ocr")
		}
		if c.match, err = regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
		}
	}

	if c.Format != "same" {
		if _, err := imaging.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	return nil
}

// parseRegion reads "x1,y1,x2,y2".
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	r := image.Rect(v[0], v[1], v[2], v[3])
	if v[0] >= v[2] || v[1] >= v[3] {
		return image.Rectangle{}, fmt.Errorf("invalid region %q: x1 must be < x2, y1 must be < y2", s)
	}
	return r, nil
}

func (c *PixelateCmd) Run(ctx context.Context) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	// Zero still means one worker per CPU.
	pool := parallel.Start(min(c.Workers, len(files)))
	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		pool.Do(func() {
			filePath := filepath.Join(c.Scan, file.Name())
			logger := slog.Default().With("file", filePath)

			if err := c.process(ctx, logger, filePath); err != nil {
				errCount.Add(1)
				logger.Error("could not pixelate image", "error", err)
				return
			}
			processedCount.Add(1)
		})
	}
	pool.Wait()

	processed := processedCount.Load()
	errs := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errs,
		"total", processed+errs)

	if err := ctx.Err(); err != nil {
		return err
	}
	if errs > 0 {
		return fmt.Errorf("error processing %d files", errs)
	}
	return nil
}

// process pixelates one file into the destination folder. A file with nothing
// to pixelate is written unchanged.
func (c *PixelateCmd) process(ctx context.Context, logger *slog.Logger, filePath string) error {
	imgFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	img, imgType, err := image.Decode(imgFile)
	imgFile.Close()
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}

	regions, err := c.regions(img)
	if err != nil {
		return err
	}
	opts := mosaic.Options{
		TileWidth:  c.TileWidth,
		TileHeight: c.TileHeight,
		Remainder:  c.remainder,
		Workers:    c.TileWorkers,
		Logger:     logger,
	}
	out, results, err := imaging.PixelateRegions(ctx, img, regions, opts)
	if err != nil {
		return err
	}
	tiles := 0
	for _, r := range results {
		tiles += r.Tiles
	}

	format := c.Format
	if format == "same" {
		format = imgType
	}
	f, err := imaging.ParseFormat(format)
	if err != nil {
		return err
	}

	name := filepath.Base(filePath)
	destName := strings.TrimSuffix(name, filepath.Ext(name)) + "." + string(f)
	destPath := filepath.Join(c.Dest, destName)
	if err := imaging.Save(out, destPath, f); err != nil {
		return fmt.Errorf("could not save image: %w", err)
	}

	logger.Info("pixelated", "dest", destPath, "regions", len(regions), "tiles", tiles)
	return nil
}

// regions returns the areas of img to pixelate.
func (c *PixelateCmd) regions(img image.Image) ([]imaging.Region, error) {
	switch {
	case c.Text != "none":
		level, err := ocr.ParseLevel(c.Granularity)
		if err != nil {
			return nil, err
		}
		hits, err := redact.Find(img, redact.Options{
			Method:   redact.Method(c.Text),
			Level:    level,
			Language: c.Language,
			Match:    c.match,
		})
		if err != nil {
			return nil, fmt.Errorf("could not find text: %w", err)
		}
		return redact.Regions(hits, c.Padding), nil

	case c.rect != nil:
		r := c.rect.Intersect(img.Bounds())
		if r.Empty() {
			return nil, nil
		}
		return []imaging.Region{imaging.RegionOf(r)}, nil

	default:
		return []imaging.Region{imaging.RegionOf(img.Bounds())}, nil
	}
}
