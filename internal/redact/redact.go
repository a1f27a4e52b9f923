// Package redact locates text in an image so it can be pixelated.
//
// Two methods are available. MethodOCR runs Tesseract and returns recognised
// words or blocks, optionally filtered by a regular expression. MethodHeuristic
// uses the edge-density detector from the detection package and needs no OCR
// engine, but cannot tell what the text says.
package redact

import (
	"errors"
	"fmt"
	"image"
	"regexp"

	"github.com/ironsheep/pixelise-mcp/internal/detection"
	"github.com/ironsheep/pixelise-mcp/internal/imaging"
	"github.com/ironsheep/pixelise-mcp/internal/ocr"
)

// Method selects how text is found.
type Method string

const (
	MethodOCR       Method = "ocr"
	MethodHeuristic Method = "heuristic"
)

// ErrPatternNeedsOCR is returned when a text pattern is given to a method
// that does not recognise text.
var ErrPatternNeedsOCR = errors.New("pattern requires method ocr")

// ParseMethod converts "ocr" or "heuristic" to a Method. The empty string
// selects MethodOCR.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodOCR:
		return MethodOCR, nil
	case MethodHeuristic:
		return MethodHeuristic, nil
	default:
		return "", fmt.Errorf("unknown method %q (want %s or %s)", s, MethodOCR, MethodHeuristic)
	}
}

// Options configures Find.
type Options struct {
	Method Method

	// Level, Language and Match apply to MethodOCR only.
	Level    ocr.Level
	Language string
	Match    *regexp.Regexp

	// MinConfidence drops hits below this confidence (0.0 to 1.0).
	MinConfidence float64

	// Region limits the search. Nil searches the whole image.
	Region *imaging.Region
}

// Hit is a piece of text found in an image.
type Hit struct {
	Text       string         `json:"text,omitempty"` // Empty for MethodHeuristic
	Confidence float64        `json:"confidence"`
	Bounds     imaging.Region `json:"bounds"`
}

// Find locates text in img. Hits are in image coordinates; the result is never nil.
func Find(img image.Image, opts Options) ([]Hit, error) {
	switch opts.Method {
	case "", MethodOCR:
		return findOCR(img, opts)
	case MethodHeuristic:
		if opts.Match != nil {
			return nil, ErrPatternNeedsOCR
		}
		return findHeuristic(img, opts)
	default:
		return nil, fmt.Errorf("unknown method %q", opts.Method)
	}
}

func findOCR(img image.Image, opts Options) ([]Hit, error) {
	ocrOpts := ocr.Options{
		Language:      opts.Language,
		MinConfidence: opts.MinConfidence,
		Level:         opts.Level,
		Match:         opts.Match,
	}

	var found *ocr.FindResult
	var err error
	if r := opts.Region; r != nil {
		found, err = ocr.FindInRegion(img, r.X1, r.Y1, r.X2, r.Y2, ocrOpts)
	} else {
		found, err = ocr.FindInImage(img, ocrOpts)
	}
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(found.Boxes))
	for _, b := range found.Boxes {
		hits = append(hits, Hit{
			Text:       b.Text,
			Confidence: b.Confidence,
			Bounds:     imaging.RegionOf(b.Bounds.Rect()),
		})
	}
	return hits, nil
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

func findHeuristic(img image.Image, opts Options) ([]Hit, error) {
	src := img
	if r := opts.Region; r != nil {
		rect := r.Rect()
		if rect.Empty() || !rect.In(img.Bounds()) {
			return nil, fmt.Errorf("region %v outside image bounds %v", rect, img.Bounds())
		}
		sub, ok := img.(subImager)
		if !ok {
			return nil, fmt.Errorf("image type %T does not support regions", img)
		}
		src = sub.SubImage(rect)
	}

	found, err := detection.DetectTextRegions(src, opts.MinConfidence)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(found.Regions))
	for _, r := range found.Regions {
		hits = append(hits, Hit{
			Confidence: r.Confidence,
			Bounds:     imaging.RegionOf(r.Bounds.Rect()),
		})
	}
	return hits, nil
}

// Regions returns the bounds of every hit grown by padding pixels.
func Regions(hits []Hit, padding int) []imaging.Region {
	regions := make([]imaging.Region, len(hits))
	for i, h := range hits {
		regions[i] = h.Bounds.Pad(padding)
	}
	return regions
}
