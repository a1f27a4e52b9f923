package mosaic

import (
	"fmt"
	"image"
)

// ColorCount is a pixel value and the number of times it occurred.
type ColorCount struct {
	Pixel Pixel
	Count int
}

// FrequencyTable counts pixel occurrences for one tile at a time. Entries
// keep the order in which colours were first added.
type FrequencyTable struct {
	index   map[Pixel]int
	entries []ColorCount
	scratch []Pixel
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{index: make(map[Pixel]int)}
}

// Add counts one occurrence of p.
func (t *FrequencyTable) Add(p Pixel) {
	if i, ok := t.index[p]; ok {
		t.entries[i].Count++
		return
	}
	t.index[p] = len(t.entries)
	t.entries = append(t.entries, ColorCount{Pixel: p, Count: 1})
}

// Len returns the number of distinct colours.
func (t *FrequencyTable) Len() int {
	return len(t.entries)
}

// Entries returns the counted colours in first-seen order. The slice is
// only valid until the next Add or Reset.
func (t *FrequencyTable) Entries() []ColorCount {
	return t.entries
}

// Mode returns the most frequent colour. Among equal counts the colour that
// was added first wins. ok is false for an empty table.
func (t *FrequencyTable) Mode() (mode ColorCount, ok bool) {
	for _, e := range t.entries {
		if e.Count > mode.Count {
			mode = e
		}
	}
	return mode, len(t.entries) > 0
}

// Reset empties the table, keeping its allocations.
func (t *FrequencyTable) Reset() {
	clear(t.index)
	t.entries = t.entries[:0]
}

// ModeOf counts the pixels of tile in src and returns the mode colour. The
// table is reset first; a nil table allocates a fresh one.
func ModeOf(src PixelBuffer, tile image.Rectangle, table *FrequencyTable) (ColorCount, error) {
	if tile.Empty() {
		return ColorCount{}, fmt.Errorf("%w: tile %v has no area", ErrInvalidArgument, tile)
	}
	if !tile.In(src.Bounds()) {
		return ColorCount{}, fmt.Errorf("%w: tile %v outside source %v", ErrOutOfBounds, tile, src.Bounds())
	}
	if table == nil {
		table = NewFrequencyTable()
	}
	table.Reset()

	if rr, ok := src.(RegionReader); ok {
		pixels, err := rr.ReadRegion(tile, table.scratch)
		table.scratch = pixels
		if err != nil {
			return ColorCount{}, err
		}
		for _, p := range pixels {
			table.Add(p)
		}
	} else {
		for y := tile.Min.Y; y < tile.Max.Y; y++ {
			for x := tile.Min.X; x < tile.Max.X; x++ {
				p, err := src.PixelAt(x, y)
				if err != nil {
					return ColorCount{}, err
				}
				table.Add(p)
			}
		}
	}

	mode, _ := table.Mode()
	return mode, nil
}

// RecolorTile fills tile in dst with the mode colour of the same tile in src
// and returns that colour. src and dst may be the same buffer.
func RecolorTile(src, dst PixelBuffer, tile image.Rectangle) (Pixel, error) {
	return recolor(src, dst, tile, NewFrequencyTable())
}

func recolor(src, dst PixelBuffer, tile image.Rectangle, table *FrequencyTable) (Pixel, error) {
	if !tile.In(dst.Bounds()) {
		return Pixel{}, fmt.Errorf("%w: tile %v outside destination %v", ErrOutOfBounds, tile, dst.Bounds())
	}

	mode, err := ModeOf(src, tile, table)
	if err != nil {
		return Pixel{}, err
	}

	if err := fill(dst, tile, mode.Pixel); err != nil {
		return Pixel{}, err
	}
	return mode.Pixel, nil
}

func fill(dst PixelBuffer, r image.Rectangle, p Pixel) error {
	if rf, ok := dst.(RegionFiller); ok {
		return rf.FillRegion(r, p)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if err := dst.SetPixel(x, y, p); err != nil {
				return err
			}
		}
	}
	return nil
}
