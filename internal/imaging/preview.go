package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// PreviewResult contains an encoded preview image
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview crops img to region (the whole image when nil) and scales it.
//
// Scaling uses nearest-neighbour sampling so pixelated blocks keep hard
// edges; a scale of 1 or less than or equal to 0 keeps the original size.
func Preview(img image.Image, region *Region, scale float64) (*PreviewResult, error) {
	bounds := img.Bounds()
	rect := regionRect(img, region)

	if rect.Empty() {
		return nil, fmt.Errorf("invalid preview region: x1 must be < x2, y1 must be < y2")
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("preview region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	encoded, err := encodePNGBase64(cropped)
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
