package imaging

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

func decodeOverlay(t *testing.T, result *GridOverlayResult) image.Image {
	t.Helper()
	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestTileGridOverlay(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})

	result, err := TileGridOverlay(img, nil, 25, 25, mosaic.RemainderClip, false, "#FF0000")
	if err != nil {
		t.Fatalf("TileGridOverlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.Columns != 4 || result.Rows != 4 || result.Tiles != 16 {
		t.Errorf("grid: got %dx%d (%d tiles), want 4x4 (16)", result.Columns, result.Rows, result.Tiles)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	decodeOverlay(t, result)
}

func TestTileGridOverlay_GridLines(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 0, 255})

	result, err := TileGridOverlay(img, nil, 25, 25, mosaic.RemainderClip, false, "#FF0000FF")
	if err != nil {
		t.Fatalf("TileGridOverlay failed: %v", err)
	}
	gridImg := decodeOverlay(t, result)

	for _, p := range []image.Point{{25, 50}, {50, 25}, {0, 10}, {99, 60}, {60, 99}} {
		r, g, b, _ := gridImg.At(p.X, p.Y).RGBA()
		if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
			t.Errorf("grid line at %v: got (%d,%d,%d), want (255,0,0)", p, r>>8, g>>8, b>>8)
		}
	}

	// Check that non-grid position is still black (background)
	r, g, b, _ := gridImg.At(15, 15).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("non-grid position at (15,15): got (%d,%d,%d), want (0,0,0)", r>>8, g>>8, b>>8)
	}
}

func TestTileGridOverlay_RegionAndDrop(t *testing.T) {
	img := createInMemoryImage(40, 40, color.RGBA{0, 0, 0, 255})

	result, err := TileGridOverlay(img, &Region{10, 10, 30, 30}, 8, 8, mosaic.RemainderDrop, false, "#00FF00")
	if err != nil {
		t.Fatalf("TileGridOverlay failed: %v", err)
	}
	if result.Tiles != 4 {
		t.Errorf("Tiles: got %d, want 4", result.Tiles)
	}
	if result.Covered != (Region{10, 10, 26, 26}) {
		t.Errorf("Covered: got %+v, want (10,10)-(26,26)", result.Covered)
	}

	gridImg := decodeOverlay(t, result)
	// Outside the region nothing is drawn.
	if _, g, _, _ := gridImg.At(5, 5).RGBA(); g != 0 {
		t.Error("overlay drew outside the region")
	}
	// The dropped strip has no lines.
	if _, g, _, _ := gridImg.At(28, 28).RGBA(); g != 0 {
		t.Error("overlay drew inside the dropped remainder")
	}
	if _, g, _, _ := gridImg.At(10, 20).RGBA(); g>>8 != 255 {
		t.Error("missing tile edge at (10,20)")
	}
}

func TestTileGridOverlay_WithCoordinates(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{128, 128, 128, 255})

	result, err := TileGridOverlay(img, nil, 50, 50, mosaic.RemainderClip, true, "#FF0000")
	if err != nil {
		t.Fatalf("TileGridOverlay failed: %v", err)
	}

	// Just verify it produces valid output (coordinate rendering is complex to verify)
	if result.ImageBase64 == "" {
		t.Error("ImageBase64 is empty")
	}
}

func TestTileGridOverlay_InvalidColor(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	// Invalid color should fall back to default
	for _, hex := range []string{"not-a-color", ""} {
		result, err := TileGridOverlay(img, nil, 10, 10, mosaic.RemainderClip, false, hex)
		if err != nil {
			t.Fatalf("TileGridOverlay with color %q failed: %v", hex, err)
		}
		if result.ImageBase64 == "" {
			t.Error("ImageBase64 is empty")
		}
	}
}

func TestTileGridOverlay_Errors(t *testing.T) {
	img := createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255})

	if _, err := TileGridOverlay(img, nil, 0, 10, mosaic.RemainderClip, false, ""); !errors.Is(err, mosaic.ErrInvalidArgument) {
		t.Errorf("zero tile width: got %v, want ErrInvalidArgument", err)
	}
	if _, err := TileGridOverlay(img, &Region{40, 40, 60, 60}, 4, 4, mosaic.RemainderClip, false, ""); !errors.Is(err, mosaic.ErrOutOfBounds) {
		t.Errorf("region outside: got %v, want ErrOutOfBounds", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#00FF00", 0, 255, 0, 255, false},
		{"#0000FF", 0, 0, 255, 255, false},
		{"#FFFFFF", 255, 255, 255, 255, false},
		{"#000000", 0, 0, 0, 255, false},
		{"FF0000", 255, 0, 0, 255, false},      // without #
		{"#FF000080", 255, 0, 0, 128, false},   // with alpha
		{"FF000080", 255, 0, 0, 128, false},    // without # with alpha
		{"", 0, 0, 0, 0, true},                 // empty
		{"#FFF", 0, 0, 0, 0, true},             // invalid length
		{"#GGGGGG", 0, 0, 0, 0, true},          // invalid hex
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := parseHexColor(tt.hex)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	// Draw a label
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}
	drawLabel(img, 10, 10, "50,50", fg, bg)

	// Verify something was drawn (not empty)
	hasWhite := false
	hasBlack := false
	for y := 9; y < 20; y++ {
		for x := 9; x < 40; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r > 200<<8 {
				hasWhite = true
			}
			if r < 50<<8 {
				hasBlack = true
			}
		}
	}

	if !hasWhite {
		t.Error("label should have white pixels (text)")
	}
	if !hasBlack {
		t.Error("label should have dark pixels (background)")
	}
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	// Draw near edge - should not panic
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// These should not panic even if label extends past bounds
	drawLabel(img, 15, 15, "100,100", fg, bg)
	drawLabel(img, 0, 0, "0,0", fg, bg)
	drawLabel(img, -5, -5, "test", fg, bg)
}

func TestDrawLabel_EmptyString(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// Should not panic on empty string
	drawLabel(img, 10, 10, "", fg, bg)
}

func TestDrawLabel_UnknownChars(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))

	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 180}

	// Unknown characters should be skipped
	drawLabel(img, 10, 10, "abc123", fg, bg) // 'a', 'b', 'c' are unknown
}
