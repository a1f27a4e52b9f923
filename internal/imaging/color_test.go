package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSampleColor(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 128, 64, 255})

	result, err := SampleColor(img, 50, 50)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	// Check hex
	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}

	// Check RGB
	if result.RGB.R != 255 || result.RGB.G != 128 || result.RGB.B != 64 {
		t.Errorf("RGB: got (%d,%d,%d), want (255,128,64)", result.RGB.R, result.RGB.G, result.RGB.B)
	}

	// Check RGBA
	if result.RGBA.R != 255 || result.RGBA.G != 128 || result.RGBA.B != 64 || result.RGBA.A != 255 {
		t.Errorf("RGBA: got (%d,%d,%d,%d), want (255,128,64,255)",
			result.RGBA.R, result.RGBA.G, result.RGBA.B, result.RGBA.A)
	}
}

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name     string
		color    color.RGBA
		wantHex  string
		wantHue  int // approximate
	}{
		{"pure red", color.RGBA{255, 0, 0, 255}, "#FF0000", 0},
		{"pure green", color.RGBA{0, 255, 0, 255}, "#00FF00", 120},
		{"pure blue", color.RGBA{0, 0, 255, 255}, "#0000FF", 240},
		{"white", color.RGBA{255, 255, 255, 255}, "#FFFFFF", 0},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", 0},
		{"gray", color.RGBA{128, 128, 128, 255}, "#808080", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(10, 10, tt.color)
			result, err := SampleColor(img, 5, 5)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}

			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x too large", 100, 50},
		{"y too large", 50, 100},
		{"both too large", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleColor(img, tt.x, tt.y)
			if err == nil {
				t.Error("SampleColor should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestSampleColor_EdgeCoordinates(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Test edge coordinates (should succeed)
	tests := []struct {
		name string
		x, y int
	}{
		{"top-left", 0, 0},
		{"top-right", 99, 0},
		{"bottom-left", 0, 99},
		{"bottom-right", 99, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleColor(img, tt.x, tt.y)
			if err != nil {
				t.Errorf("SampleColor failed for valid edge coordinate (%d,%d): %v", tt.x, tt.y, err)
			}
		})
	}
}

func TestSampleColor_NonPremultiplied(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{200, 100, 50, 128})

	result, err := SampleColor(img, 1, 1)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGBA != (RGBAColor{200, 100, 50, 128}) {
		t.Errorf("RGBA: got %+v, want {200 100 50 128}", result.RGBA)
	}
	if result.Hex != "#C86432" {
		t.Errorf("Hex: got %s, want #C86432", result.Hex)
	}
}

func TestSampleColor_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 30, 40))
	img.Set(10, 20, color.RGBA{0, 0, 255, 255})

	result, err := SampleColor(img, 10, 20)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#0000FF" {
		t.Errorf("Hex: got %s, want #0000FF", result.Hex)
	}
	if _, err := SampleColor(img, 0, 0); err == nil {
		t.Error("SampleColor should fail outside offset bounds")
	}
}

func TestColorFromPixel(t *testing.T) {
	tests := []struct {
		name     string
		pixel    mosaic.Pixel
		channels int
		want     RGBAColor
	}{
		{"gray", mosaic.NewPixel(90), 1, RGBAColor{90, 90, 90, 255}},
		{"gray alpha", mosaic.NewPixel(90, 10), 2, RGBAColor{90, 90, 90, 10}},
		{"rgb", mosaic.NewPixel(1, 2, 3), 3, RGBAColor{1, 2, 3, 255}},
		{"rgba", mosaic.NewPixel(1, 2, 3, 4), 4, RGBAColor{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorFromPixel(tt.pixel, tt.channels)
			if got.RGBA != tt.want {
				t.Errorf("got %+v, want %+v", got.RGBA, tt.want)
			}
		})
	}
}

func TestTileModes(t *testing.T) {
	// 8x4 image: left tile mostly red, right tile all blue.
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
			if x < 4 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			}
		}
	}
	img.Set(0, 0, color.RGBA{0, 255, 0, 255})

	result, err := TileModes(img, nil, 4, 4, mosaic.RemainderClip)
	if err != nil {
		t.Fatalf("TileModes failed: %v", err)
	}

	if result.Columns != 2 || result.Rows != 1 || len(result.Tiles) != 2 {
		t.Fatalf("grid: got %dx%d with %d tiles, want 2x1 with 2", result.Columns, result.Rows, len(result.Tiles))
	}
	if result.Channels != 3 {
		t.Errorf("Channels: got %d, want 3", result.Channels)
	}

	left := result.Tiles[0]
	if left.Color.Hex != "#FF0000" || left.Count != 15 {
		t.Errorf("left tile: got %s x%d, want #FF0000 x15", left.Color.Hex, left.Count)
	}
	if left.Bounds != (Region{0, 0, 4, 4}) {
		t.Errorf("left bounds: got %+v", left.Bounds)
	}
	if right := result.Tiles[1]; right.Color.Hex != "#0000FF" || right.Share != 100 {
		t.Errorf("right tile: got %s %.1f%%, want #0000FF 100%%", right.Color.Hex, right.Share)
	}

	if len(result.Palette) != 2 {
		t.Fatalf("palette: got %d entries, want 2", len(result.Palette))
	}
	// Equal tile counts keep first appearance order.
	if result.Palette[0].Color.Hex != "#FF0000" {
		t.Errorf("palette[0]: got %s, want #FF0000", result.Palette[0].Color.Hex)
	}

	// The source is untouched.
	if r, g, _, _ := img.At(0, 0).RGBA(); r != 0 || g != 0xffff {
		t.Error("TileModes modified the source image")
	}
}

func TestTileModes_PaletteOrder(t *testing.T) {
	img := createPatternImage(12, 4) // red | green split at x=6
	result, err := TileModes(img, &Region{0, 0, 12, 2}, 2, 2, mosaic.RemainderClip)
	if err != nil {
		t.Fatalf("TileModes failed: %v", err)
	}
	if len(result.Tiles) != 6 {
		t.Fatalf("tiles: got %d, want 6", len(result.Tiles))
	}
	if len(result.Palette) != 2 || result.Palette[0].Tiles != 3 || result.Palette[1].Tiles != 3 {
		t.Errorf("palette: got %+v, want two colours with 3 tiles each", result.Palette)
	}
}

func TestTileModes_DropRemainder(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{9, 9, 9, 255})

	result, err := TileModes(img, nil, 4, 4, mosaic.RemainderDrop)
	if err != nil {
		t.Fatalf("TileModes failed: %v", err)
	}
	if len(result.Tiles) != 4 {
		t.Errorf("tiles: got %d, want 4", len(result.Tiles))
	}
	if result.Covered != (Region{0, 0, 8, 8}) {
		t.Errorf("Covered: got %+v, want (0,0)-(8,8)", result.Covered)
	}
	if result.Remainder != "drop" {
		t.Errorf("Remainder: got %s, want drop", result.Remainder)
	}
}

func TestTileModes_Errors(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{9, 9, 9, 255})

	if _, err := TileModes(img, nil, 0, 4, mosaic.RemainderClip); !errors.Is(err, mosaic.ErrInvalidArgument) {
		t.Errorf("zero tile width: got %v, want ErrInvalidArgument", err)
	}
	if _, err := TileModes(img, &Region{5, 5, 20, 20}, 4, 4, mosaic.RemainderClip); !errors.Is(err, mosaic.ErrOutOfBounds) {
		t.Errorf("region outside: got %v, want ErrOutOfBounds", err)
	}
}

func TestColorHSL(t *testing.T) {
	tests := []struct {
		name     string
		r, g, b  uint8
		wantH    int
		wantS    int
		wantL    int
	}{
		{"red", 255, 0, 0, 0, 100, 50},
		{"green", 0, 255, 0, 120, 100, 50},
		{"blue", 0, 0, 255, 240, 100, 50},
		{"white", 255, 255, 255, 0, 0, 100},
		{"black", 0, 0, 0, 0, 0, 0},
		{"gray", 128, 128, 128, 0, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hsl := ColorFromPixel(mosaic.NewPixel(tt.r, tt.g, tt.b), 3).HSL

			// Allow some tolerance for rounding
			if abs(hsl.H-tt.wantH) > 1 {
				t.Errorf("H: got %d, want %d", hsl.H, tt.wantH)
			}
			if abs(hsl.S-tt.wantS) > 1 {
				t.Errorf("S: got %d, want %d", hsl.S, tt.wantS)
			}
			if abs(hsl.L-tt.wantL) > 1 {
				t.Errorf("L: got %d, want %d", hsl.L, tt.wantL)
			}
		})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
