package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// createTestTextImage creates a simple image for OCR testing
// Note: Real OCR tests would need actual text images; these are basic unit tests
func createTestTextImage(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Add some black pixels to simulate text
	for y := 10; y < 20; y++ {
		for x := 10; x < 50; x++ {
			img.Set(x, y, color.Black)
		}
	}

	tmpFile, err := os.CreateTemp("", "ocr-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	point := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  point,
	}
	d.DrawString(text)
}

// createImageWithText creates an image with actual rendered text for OCR testing
func createImageWithText(t *testing.T, text string, scale int) string {
	t.Helper()

	// Use a larger canvas for better OCR recognition
	// basicfont.Face7x13 is 7 pixels wide, 13 pixels tall per character
	width := len(text)*7*scale + 40*scale
	height := 40 * scale

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Draw text at multiple scales for better OCR
	if scale == 1 {
		drawText(img, 20, 25, text, color.Black)
	} else {
		// For scaled images, draw the text and then scale up
		smallImg := image.NewRGBA(image.Rect(0, 0, width/scale, height/scale))
		draw.Draw(smallImg, smallImg.Bounds(), image.White, image.Point{}, draw.Src)
		drawText(smallImg, 20, 25, text, color.Black)

		// Scale up by drawing each pixel as a scale x scale block
		for y := 0; y < height/scale; y++ {
			for x := 0; x < width/scale; x++ {
				c := smallImg.At(x, y)
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						img.Set(x*scale+dx, y*scale+dy, c)
					}
				}
			}
		}
	}

	tmpFile, err := os.CreateTemp("", "ocr-text-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// skipWithoutTesseract skips the test when err says Tesseract is missing.
func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	if strings.Contains(err.Error(), "tesseract") ||
		strings.Contains(err.Error(), "library") {
		t.Skip("Tesseract not available")
	}
}

func TestFind(t *testing.T) {
	imgPath := createTestTextImage(t, 100, 50)
	defer os.Remove(imgPath)

	result, err := Find(imgPath, Options{Language: "eng"})
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("Find failed: %v", err)
	}

	// Just verify it returns a result (may be empty for our simple test image)
	if result == nil {
		t.Fatal("Find returned nil result")
	}
	if result.Count != len(result.Boxes) {
		t.Errorf("Count (%d) doesn't match len(Boxes) (%d)", result.Count, len(result.Boxes))
	}
	if result.Level != "word" {
		t.Errorf("Level: got %s, want word", result.Level)
	}
}

func TestFind_RenderedWords(t *testing.T) {
	imgPath := createImageWithText(t, "HELLO 12345", 4)
	defer os.Remove(imgPath)

	result, err := Find(imgPath, Options{})
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("Find failed: %v", err)
	}

	for _, box := range result.Boxes {
		if box.Bounds.X2 <= box.Bounds.X1 || box.Bounds.Y2 <= box.Bounds.Y1 {
			t.Errorf("box %q has empty bounds %+v", box.Text, box.Bounds)
		}
		if box.Text == "" {
			t.Error("word boxes should have text")
		}
	}

	digits, err := Find(imgPath, Options{Match: regexp.MustCompile(`^[0-9]+$`)})
	if err != nil {
		t.Fatalf("Find with match failed: %v", err)
	}
	for _, box := range digits.Boxes {
		if !regexp.MustCompile(`^[0-9]+$`).MatchString(box.Text) {
			t.Errorf("box %q does not match the filter", box.Text)
		}
	}
	if digits.Count > result.Count {
		t.Errorf("filtered count %d exceeds unfiltered %d", digits.Count, result.Count)
	}
}

func TestFind_NonExistentFile(t *testing.T) {
	_, err := Find("/nonexistent/path/image.png", Options{})
	if err == nil {
		t.Error("Find should fail for non-existent file")
	}
}

func TestFind_InvalidLanguage(t *testing.T) {
	imgPath := createTestTextImage(t, 100, 50)
	defer os.Remove(imgPath)

	_, err := Find(imgPath, Options{Language: "invalid_language_code_xyz"})
	if err == nil {
		// Some Tesseract installations might be lenient with language codes
		t.Log("Find did not fail for invalid language - may be Tesseract config")
	}
}

func TestFind_Blocks(t *testing.T) {
	imgPath := createTestTextImage(t, 200, 100)
	defer os.Remove(imgPath)

	low, err := Find(imgPath, Options{Level: LevelBlock, MinConfidence: 0.1})
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("Find failed: %v", err)
	}
	high, err := Find(imgPath, Options{Level: LevelBlock, MinConfidence: 0.9})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	// Higher threshold should give fewer or equal results
	if high.Count > low.Count {
		t.Errorf("Higher MinConfidence should give fewer results: low=%d, high=%d", low.Count, high.Count)
	}
	if low.Level != "block" {
		t.Errorf("Level: got %s, want block", low.Level)
	}
}

func TestFindInRegion_CoordinateOffset(t *testing.T) {
	// Create an image with known content
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, 60, 75, "OFFSET", color.Black)

	result, err := FindInRegion(img, 50, 50, 150, 100, Options{})
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("FindInRegion failed: %v", err)
	}

	// If boxes were detected, their coordinates should be offset by (50, 50)
	for _, box := range result.Boxes {
		if box.Bounds.X1 < 50 || box.Bounds.Y1 < 50 {
			t.Error("Box bounds should be offset to original image coordinates")
		}
	}
}

func TestFindInRegion_OutOfBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"past right edge", 0, 0, 20, 10},
		{"negative", -1, 0, 5, 5},
		{"empty", 4, 4, 4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FindInRegion(img, tt.x1, tt.y1, tt.x2, tt.y2, Options{}); err == nil {
				t.Error("FindInRegion should fail for an invalid region")
			}
		})
	}
}

func TestFindInImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	result, err := FindInImage(img, Options{})
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("FindInImage failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected non-nil result")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelWord, false},
		{"word", LevelWord, false},
		{"block", LevelBlock, false},
		{"line", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q): error %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBoundsRect(t *testing.T) {
	bounds := Bounds{X1: 10, Y1: 20, X2: 100, Y2: 80}

	if got := bounds.Rect(); got != image.Rect(10, 20, 100, 80) {
		t.Errorf("Rect: got %v", got)
	}
}

func TestSaveImageToTemp(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}

	tmpPath, err := SaveImageToTemp(img, "test-save")
	if err != nil {
		t.Fatalf("SaveImageToTemp failed: %v", err)
	}
	defer os.Remove(tmpPath)

	// Verify it's in temp directory
	if !strings.HasPrefix(tmpPath, os.TempDir()) {
		t.Error("SaveImageToTemp should create file in temp directory")
	}

	// Verify filename has prefix
	filename := filepath.Base(tmpPath)
	if !strings.HasPrefix(filename, "test-save") {
		t.Errorf("Filename should have prefix 'test-save', got %s", filename)
	}

	// Verify it's a valid PNG
	f, err := os.Open(tmpPath)
	if err != nil {
		t.Fatalf("failed to open temp file: %v", err)
	}
	defer f.Close()

	loadedImg, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode saved PNG: %v", err)
	}

	if loadedImg.Bounds().Dx() != 50 || loadedImg.Bounds().Dy() != 50 {
		t.Errorf("loaded image dimensions: got %dx%d, want 50x50",
			loadedImg.Bounds().Dx(), loadedImg.Bounds().Dy())
	}
}

func TestSaveImageToTemp_Unique(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	seen := make(map[string]bool)
	for range 3 {
		tmpPath, err := SaveImageToTemp(img, "ocr-test")
		if err != nil {
			t.Fatalf("SaveImageToTemp failed: %v", err)
		}
		defer os.Remove(tmpPath)

		if seen[tmpPath] {
			t.Errorf("SaveImageToTemp reused path %s", tmpPath)
		}
		seen[tmpPath] = true
	}
}
