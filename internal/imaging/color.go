package imaging

import (
	"cmp"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
//
// This struct provides the same color in four formats to suit different use cases:
//   - Hex: Compact string format for CSS/web usage
//   - RGB: Standard 8-bit components without alpha
//   - RGBA: 8-bit components with alpha for transparency
//   - HSL: Perceptual color space for intuitive color operations
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - img: The source image to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if coordinates are outside the image bounds.
//
// The color is read the way pixelation reads it: as non-premultiplied 8-bit
// channels, so the value reported here is the value tiles are compared by.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, a := nrgbaAt(img, x, y)
	return colorResult(r, g, b, a), nil
}

// ColorFromPixel reports a working-buffer pixel with the given channel count.
func ColorFromPixel(p mosaic.Pixel, channels int) ColorResult {
	var r, g, b, a uint8
	switch channels {
	case 1:
		r, g, b, a = p[0], p[0], p[0], 0xff
	case 2:
		r, g, b, a = p[0], p[0], p[0], p[1]
	case 3:
		r, g, b, a = p[0], p[1], p[2], 0xff
	default:
		r, g, b, a = p[0], p[1], p[2], p[3]
	}
	return *colorResult(r, g, b, a)
}

func colorResult(r, g, b, a uint8) *ColorResult {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, l := c.Hsl()

	return &ColorResult{
		Hex:  strings.ToUpper(c.Hex()),
		RGB:  RGBColor{R: r, G: g, B: b},
		RGBA: RGBAColor{R: r, G: g, B: b, A: a},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

func nrgbaAt(img image.Image, x, y int) (r, g, b, a uint8) {
	if n, ok := img.(*image.NRGBA); ok {
		c := n.NRGBAAt(x, y)
		return c.R, c.G, c.B, c.A
	}
	r32, g32, b32, a32 := img.At(x, y).RGBA()
	if a32 == 0 {
		return 0, 0, 0, 0
	}
	if a32 != 0xffff {
		r32 = r32 * 0xffff / a32
		g32 = g32 * 0xffff / a32
		b32 = b32 * 0xffff / a32
	}
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8), uint8(a32 >> 8)
}

// TileMode is the mode colour of one tile.
type TileMode struct {
	Bounds Region      `json:"bounds"`
	Color  ColorResult `json:"color"`
	Count  int         `json:"count"` // Pixels of the tile holding the mode colour
	Share  float64     `json:"share"` // Count as a percentage of the tile area (0-100)
}

// PaletteEntry is one distinct mode colour and the number of tiles using it.
type PaletteEntry struct {
	Color ColorResult `json:"color"`
	Tiles int         `json:"tiles"`
}

// TileModesResult is the report produced by TileModes.
type TileModesResult struct {
	Region     Region         `json:"region"`
	Covered    Region         `json:"covered"`
	TileWidth  int            `json:"tile_width"`
	TileHeight int            `json:"tile_height"`
	Remainder  string         `json:"remainder"`
	Columns    int            `json:"columns"`
	Rows       int            `json:"rows"`
	Channels   int            `json:"channels"`
	Tiles      []TileMode     `json:"tiles"`
	Palette    []PaletteEntry `json:"palette"`
}

// TileModes reports the colour each tile would be painted with, without
// writing anything.
//
// Tiles are listed in row-major order. The palette lists each distinct mode
// colour once, ordered by the number of tiles using it (most first) and then
// by first appearance.
//
// Parameters:
//   - img: The source image to analyze.
//   - region: Optional area to analyze. If nil, the entire image is analyzed.
//   - tileWidth, tileHeight: Tile size in pixels; both must be positive.
//   - remainder: How partial tiles at the right and bottom edges are handled.
func TileModes(img image.Image, region *Region, tileWidth, tileHeight int, remainder mosaic.Remainder) (*TileModesResult, error) {
	rect := regionRect(img, region)
	grid, err := mosaic.NewGrid(rect, tileWidth, tileHeight, remainder)
	if err != nil {
		return nil, err
	}
	if !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: region %v outside image %v", mosaic.ErrOutOfBounds, rect, img.Bounds())
	}

	buf, err := ToBuffer(img)
	if err != nil {
		return nil, err
	}

	table := mosaic.NewFrequencyTable()
	tiles := make([]TileMode, 0, grid.Len())
	counts := make(map[mosaic.Pixel]int)
	var order []mosaic.Pixel
	for tile := range grid.All() {
		mode, err := mosaic.ModeOf(buf, tile, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count tile %v: %w", tile, err)
		}
		area := tile.Dx() * tile.Dy()
		tiles = append(tiles, TileMode{
			Bounds: RegionOf(tile),
			Color:  ColorFromPixel(mode.Pixel, buf.Channels()),
			Count:  mode.Count,
			Share:  float64(mode.Count) / float64(area) * 100,
		})
		if counts[mode.Pixel] == 0 {
			order = append(order, mode.Pixel)
		}
		counts[mode.Pixel]++
	}

	palette := make([]PaletteEntry, 0, len(order))
	for _, p := range order {
		palette = append(palette, PaletteEntry{
			Color: ColorFromPixel(p, buf.Channels()),
			Tiles: counts[p],
		})
	}
	slices.SortStableFunc(palette, func(a, b PaletteEntry) int {
		return cmp.Compare(b.Tiles, a.Tiles)
	})

	return &TileModesResult{
		Region:     RegionOf(rect),
		Covered:    RegionOf(grid.Covered()),
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Remainder:  remainder.String(),
		Columns:    grid.Columns(),
		Rows:       grid.Rows(),
		Channels:   buf.Channels(),
		Tiles:      tiles,
		Palette:    palette,
	}, nil
}
