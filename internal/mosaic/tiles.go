package mosaic

import (
	"fmt"
	"image"
	"iter"
)

// Remainder selects how a grid treats pixels that do not fill a whole tile.
type Remainder int

const (
	// RemainderClip covers the trailing column and row with clipped tiles.
	RemainderClip Remainder = iota
	// RemainderDrop produces full tiles only and skips the remainder strip.
	RemainderDrop
)

func (r Remainder) String() string {
	switch r {
	case RemainderClip:
		return "clip"
	case RemainderDrop:
		return "drop"
	default:
		return fmt.Sprintf("Remainder(%d)", int(r))
	}
}

// ParseRemainder converts "clip" or "drop" to a Remainder. The empty string
// selects RemainderClip.
func ParseRemainder(s string) (Remainder, error) {
	switch s {
	case "", "clip":
		return RemainderClip, nil
	case "drop":
		return RemainderDrop, nil
	default:
		return 0, fmt.Errorf("%w: unknown remainder policy %q (want clip or drop)", ErrInvalidArgument, s)
	}
}

// Grid partitions a region into tiles of a fixed size.
type Grid struct {
	region     image.Rectangle
	tileWidth  int
	tileHeight int
	remainder  Remainder
	columns    int
	rows       int
}

// NewGrid validates the arguments and returns the tile grid over region.
//
// With RemainderDrop a region smaller than one tile yields an empty grid.
func NewGrid(region image.Rectangle, tileWidth, tileHeight int, remainder Remainder) (*Grid, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d must be positive", ErrInvalidArgument, tileWidth, tileHeight)
	}
	if region.Empty() {
		return nil, fmt.Errorf("%w: region %v has no area", ErrInvalidArgument, region)
	}

	columns := region.Dx() / tileWidth
	rows := region.Dy() / tileHeight
	switch remainder {
	case RemainderClip:
		if region.Dx()%tileWidth != 0 {
			columns++
		}
		if region.Dy()%tileHeight != 0 {
			rows++
		}
	case RemainderDrop:
	default:
		return nil, fmt.Errorf("%w: unknown remainder policy %v", ErrInvalidArgument, remainder)
	}

	return &Grid{
		region:     region,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		remainder:  remainder,
		columns:    columns,
		rows:       rows,
	}, nil
}

// Tiles is shorthand for NewGrid(...).All().
func Tiles(region image.Rectangle, tileWidth, tileHeight int, remainder Remainder) (iter.Seq[image.Rectangle], error) {
	g, err := NewGrid(region, tileWidth, tileHeight, remainder)
	if err != nil {
		return nil, err
	}
	return g.All(), nil
}

// Region returns the area the grid partitions.
func (g *Grid) Region() image.Rectangle { return g.region }

// TileWidth returns the full tile width in pixels.
func (g *Grid) TileWidth() int { return g.tileWidth }

// TileHeight returns the full tile height in pixels.
func (g *Grid) TileHeight() int { return g.tileHeight }

// Remainder returns the policy for partial tiles.
func (g *Grid) Remainder() Remainder { return g.remainder }

// Columns returns the number of tiles per row.
func (g *Grid) Columns() int { return g.columns }

// Rows returns the number of tile rows.
func (g *Grid) Rows() int { return g.rows }

// Len returns the number of tiles.
func (g *Grid) Len() int {
	return g.columns * g.rows
}

// Tile returns the tile at the given column and row, clipped to the region.
// A tile larger than the region is clipped without computing its far edge,
// so any positive tile size is safe.
func (g *Grid) Tile(column, row int) image.Rectangle {
	x := g.region.Min.X + column*g.tileWidth
	y := g.region.Min.Y + row*g.tileHeight
	w := min(g.tileWidth, g.region.Max.X-x)
	h := min(g.tileHeight, g.region.Max.Y-y)
	return image.Rect(x, y, x+w, y+h)
}

// All yields every tile in row-major order. The sequence can be ranged over
// any number of times.
func (g *Grid) All() iter.Seq[image.Rectangle] {
	return func(yield func(image.Rectangle) bool) {
		for row := range g.rows {
			for column := range g.columns {
				if !yield(g.Tile(column, row)) {
					return
				}
			}
		}
	}
}

// Covered returns the part of the region the tiles cover. It equals the
// region for RemainderClip and is empty when the grid has no tiles.
func (g *Grid) Covered() image.Rectangle {
	if g.Len() == 0 {
		return image.Rectangle{}
	}
	if g.remainder == RemainderClip {
		return g.region
	}
	// Full tiles only, so the products never exceed the region size.
	return Rect(g.region.Min.X, g.region.Min.Y, g.columns*g.tileWidth, g.rows*g.tileHeight)
}
