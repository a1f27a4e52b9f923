package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/pixelise-mcp/internal/parallel"
)

// DefaultTileSize is the tile width and height used when none is given.
const DefaultTileSize = 4

// Options configures Pixelate.
type Options struct {
	// TileWidth and TileHeight are the tile size in pixels. Both must be positive.
	TileWidth  int
	TileHeight int

	// Remainder decides how partial tiles at the right and bottom edges are handled.
	Remainder Remainder

	// Workers is the number of tiles processed concurrently. Values below 2
	// process tiles sequentially on the calling goroutine. It is capped at the
	// number of tiles.
	Workers int

	// Progress, if set, is called after each tile with the number of tiles
	// done so far. With several workers it may be called concurrently.
	Progress func(done, total int)

	// Logger receives debug output. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns 4x4 tiles, clipped remainders and sequential processing.
func DefaultOptions() Options {
	return Options{
		TileWidth:  DefaultTileSize,
		TileHeight: DefaultTileSize,
		Remainder:  RemainderClip,
	}
}

// Result describes a finished Pixelate call.
type Result struct {
	Grid    *Grid
	Tiles   int
	Covered image.Rectangle
}

// Pixelate replaces every tile of region in buf with its mode colour.
//
// Arguments are validated before anything is written: a bad tile size or an
// empty region returns ErrInvalidArgument, a region that is not inside the
// buffer returns ErrOutOfBounds. Pixels outside the tiled area are not
// touched. Each tile is read completely before it is written and tiles never
// overlap, so working in place gives the same result as reading from an
// untouched copy.
//
// The context is checked between tiles; on cancellation the buffer may be
// partially pixelated and ctx.Err() is returned.
func Pixelate(ctx context.Context, buf PixelBuffer, region image.Rectangle, opts Options) (*Result, error) {
	grid, err := NewGrid(region, opts.TileWidth, opts.TileHeight, opts.Remainder)
	if err != nil {
		return nil, err
	}
	if !region.In(buf.Bounds()) {
		return nil, fmt.Errorf("%w: region %v outside buffer %v", ErrOutOfBounds, region, buf.Bounds())
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	total := grid.Len()
	logger.Debug("pixelating", "region", region, "tile_width", opts.TileWidth, "tile_height", opts.TileHeight,
		"remainder", opts.Remainder, "tiles", total, "workers", opts.Workers)

	// More workers than tiles would only sit idle.
	if workers := min(opts.Workers, total); workers > 1 {
		err = pixelateConcurrent(ctx, buf, grid, workers, opts)
	} else {
		err = pixelateSequential(ctx, buf, grid, opts)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Grid:    grid,
		Tiles:   total,
		Covered: grid.Covered(),
	}, nil
}

func pixelateSequential(ctx context.Context, buf PixelBuffer, grid *Grid, opts Options) error {
	table := NewFrequencyTable()
	total := grid.Len()
	done := 0
	for tile := range grid.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := recolor(buf, buf, tile, table); err != nil {
			return fmt.Errorf("failed to recolor tile %v: %w", tile, err)
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, total)
		}
	}
	return nil
}

func pixelateConcurrent(ctx context.Context, buf PixelBuffer, grid *Grid, workers int, opts Options) error {
	pool := parallel.Start(workers)
	tables := sync.Pool{
		New: func() any { return NewFrequencyTable() },
	}

	var (
		mu   sync.Mutex
		errs []error
		done atomic.Int64
	)
	total := grid.Len()

	for tile := range grid.All() {
		if ctx.Err() != nil {
			break
		}
		pool.Do(func() {
			if ctx.Err() != nil {
				return
			}
			table := tables.Get().(*FrequencyTable)
			defer tables.Put(table)

			if _, err := recolor(buf, buf, tile, table); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("failed to recolor tile %v: %w", tile, err))
				mu.Unlock()
				return
			}
			n := done.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(n), total)
			}
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}
