package ocr

import (
	"fmt"
	"image"
	"os"
	"regexp"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Rect returns the bounds as an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Level selects the granularity of the boxes Tesseract reports.
type Level int

const (
	// LevelWord reports one box per recognised word.
	LevelWord Level = iota
	// LevelBlock reports paragraph-like blocks of text.
	LevelBlock
)

func (l Level) String() string {
	if l == LevelBlock {
		return "block"
	}
	return "word"
}

// ParseLevel converts "word" or "block" to a Level. The empty string selects LevelWord.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "word":
		return LevelWord, nil
	case "block":
		return LevelBlock, nil
	default:
		return 0, fmt.Errorf("unknown granularity %q (want word or block)", s)
	}
}

func (l Level) iteratorLevel() gosseract.PageIteratorLevel {
	if l == LevelBlock {
		return gosseract.RIL_BLOCK
	}
	return gosseract.RIL_WORD
}

// Options configures a text search.
type Options struct {
	// Language is the Tesseract language code (e.g., "eng"). Empty means DefaultLanguage.
	Language string

	// MinConfidence drops boxes below this confidence (0.0 to 1.0).
	MinConfidence float64

	// Level selects word or block boxes.
	Level Level

	// Match, if set, keeps only boxes whose recognised text matches it.
	Match *regexp.Regexp
}

// TextBox is a piece of recognised text and where it is.
type TextBox struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// FindResult contains the boxes found in an image.
type FindResult struct {
	// Boxes are the boxes that passed the confidence and match filters, in
	// Tesseract's reading order.
	Boxes []TextBox `json:"boxes"`

	// Count is the number of boxes.
	Count int `json:"count"`

	// Level is "word" or "block".
	Level string `json:"level"`
}

// Find runs Tesseract on an image file and returns the text boxes it reports.
//
// Parameters:
//   - imagePath: Absolute path to the image file. Supports PNG, JPEG, TIFF, BMP, GIF.
//     Use FindInImage for formats Tesseract cannot read.
//   - opts: Language, confidence threshold, granularity and optional text filter.
//
// Returns:
//   - *FindResult: The boxes that passed the filters.
//   - error: Non-nil if the image cannot be loaded or Tesseract fails.
//
// # Filtering
//
// Boxes with empty text (at word level), confidence below opts.MinConfidence
// or text not matching opts.Match are dropped. Block-level boxes are matched
// against the whole text of the block.
func Find(imagePath string, opts Options) (*FindResult, error) {
	client := gosseract.NewClient()
	defer client.Close()

	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(opts.Level.iteratorLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to get text boxes: %w", err)
	}

	found := make([]TextBox, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" && opts.Level == LevelWord {
			continue
		}
		confidence := float64(box.Confidence) / 100.0
		if confidence < opts.MinConfidence {
			continue
		}
		if opts.Match != nil && !opts.Match.MatchString(text) {
			continue
		}
		found = append(found, TextBox{
			Text:       text,
			Confidence: confidence,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &FindResult{
		Boxes: found,
		Count: len(found),
		Level: opts.Level.String(),
	}, nil
}

// FindInImage runs Find on an image that is already in memory.
//
// The image is written to a temporary PNG for Tesseract and removed
// afterwards. Box coordinates are in the image's own coordinate space.
func FindInImage(img image.Image, opts Options) (*FindResult, error) {
	bounds := img.Bounds()
	return FindInRegion(img, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y, opts)
}

// FindInRegion runs Find on a rectangular region of an image.
//
// Parameters:
//   - img: The source image (already loaded into memory).
//   - x1, y1: Top-left corner of the region (inclusive).
//   - x2, y2: Bottom-right corner of the region (exclusive).
//   - opts: As for Find.
//
// # Coordinate Adjustment
//
// The returned bounding boxes are adjusted to the original image coordinates.
// For example, if the region starts at (100, 50) and a word is detected at
// (10, 20) within the cropped region, the returned bounds will be (110, 70).
func FindInRegion(img image.Image, x1, y1, x2, y2 int, opts Options) (*FindResult, error) {
	r := image.Rect(x1, y1, x2, y2)
	if r.Empty() || !r.In(img.Bounds()) {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %v", x1, y1, x2, y2, img.Bounds())
	}

	// Crop returns an image with its origin at (0,0).
	cropped := imaging.Crop(img, r)

	// Save to temporary file (tesseract needs a file path)
	tmpPath, err := SaveImageToTemp(cropped, "ocr-region")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPath)

	result, err := Find(tmpPath, opts)
	if err != nil {
		return nil, err
	}

	for i := range result.Boxes {
		result.Boxes[i].Bounds.X1 += x1
		result.Boxes[i].Bounds.Y1 += y1
		result.Boxes[i].Bounds.X2 += x1
		result.Boxes[i].Bounds.Y2 += y1
	}
	return result, nil
}

// SaveImageToTemp saves an image to a temporary PNG file and returns its path.
//
// The file is created in the system's temp directory with a name starting
// with prefix. The caller is responsible for deleting it with os.Remove.
func SaveImageToTemp(img image.Image, prefix string) (string, error) {
	f, err := os.CreateTemp("", prefix+"-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := imgio.PNGEncoder()(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}
