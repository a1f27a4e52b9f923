package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// GridOverlayResult contains the image with the tile grid drawn on it
type GridOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
	Tiles       int    `json:"tiles"`
	Covered     Region `json:"covered"`
}

// TileGridOverlay draws the outline of every tile pixelation would use, so the
// tile layout can be checked before anything is changed
func TileGridOverlay(img image.Image, region *Region, tileWidth, tileHeight int, remainder mosaic.Remainder, showCoordinates bool, gridColorHex string) (*GridOverlayResult, error) {
	rect := regionRect(img, region)
	grid, err := mosaic.NewGrid(rect, tileWidth, tileHeight, remainder)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if !rect.In(bounds) {
		return nil, fmt.Errorf("%w: region %v outside image %v", mosaic.ErrOutOfBounds, rect, bounds)
	}

	// Parse grid color
	gridColor, err := parseHexColor(gridColorHex)
	if err != nil {
		gridColor = color.NRGBA{255, 0, 0, 128} // Default: semi-transparent red
	}
	line := image.NewUniform(gridColor)

	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for tile := range grid.All() {
		// Top and left edges of each tile; the covered area's far edges are drawn below.
		draw.Draw(result, image.Rect(tile.Min.X, tile.Min.Y, tile.Max.X, tile.Min.Y+1), line, image.Point{}, draw.Over)
		draw.Draw(result, image.Rect(tile.Min.X, tile.Min.Y+1, tile.Min.X+1, tile.Max.Y), line, image.Point{}, draw.Over)

		if showCoordinates && tile.Dx() >= 16 && tile.Dy() >= 9 {
			label := fmt.Sprintf("%d,%d", tile.Min.X, tile.Min.Y)
			drawLabel(result, tile.Min.X+2, tile.Min.Y+2, label, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
		}
	}
	if covered := grid.Covered(); !covered.Empty() {
		draw.Draw(result, image.Rect(covered.Min.X, covered.Max.Y-1, covered.Max.X, covered.Max.Y), line, image.Point{}, draw.Over)
		draw.Draw(result, image.Rect(covered.Max.X-1, covered.Min.Y, covered.Max.X, covered.Max.Y-1), line, image.Point{}, draw.Over)
	}

	encoded, err := encodePNGBase64(result)
	if err != nil {
		return nil, err
	}

	return &GridOverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Columns:     grid.Columns(),
		Rows:        grid.Rows(),
		Tiles:       grid.Len(),
		Covered:     RegionOf(grid.Covered()),
	}, nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a small coordinate label in a 3x5 pixel font
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	background := image.Rect(x-1, y-1, x+labelWidth, y+labelHeight).Intersect(bounds)
	draw.Draw(img, background, image.NewUniform(bg), image.Point{}, draw.Over)

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					if p := image.Pt(cx+col, y+row); p.In(bounds) {
						img.SetRGBA(p.X, p.Y, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
