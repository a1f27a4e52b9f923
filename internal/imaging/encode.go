package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/tiff"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
	FormatPXB  Format = "pxb"
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 95

// ParseFormat accepts a format name or a common alias ("jpg", "tif").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "webp":
		return FormatWebP, nil
	case "pxb":
		return FormatPXB, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("no file extension in %q", path)
	}
	return ParseFormat(ext)
}

// MimeType returns the MIME type of the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPXB:
		return "application/octet-stream"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "image/" + string(f)
	}
}

// Encode writes img to w in the given format.
//
// GIF output keeps colours exact when the image has at most 256 of them,
// which is the usual case after pixelating with large tiles. Otherwise the
// Plan 9 palette is used without dithering. JPEG is lossy and will blur tile
// edges; prefer a lossless format when the exact block colours matter.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		err = imgio.PNGEncoder()(w, img)
	case FormatJPEG:
		err = imgio.JPEGEncoder(JPEGQuality)(w, img)
	case FormatBMP:
		err = imgio.BMPEncoder()(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatGIF:
		err = gif.Encode(w, toPaletted(img), nil)
	case FormatPXB:
		buf, berr := ToBuffer(img)
		if berr != nil {
			return berr
		}
		err = WriteRaw(w, buf)
	default:
		return fmt.Errorf("unsupported image format %q", f)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return nil
}

// Save encodes img to path. The image is written to a temporary file in the
// same directory and renamed into place, so a failed encode never leaves a
// partial file behind.
func Save(img image.Image, path string, f Format) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// toPaletted builds a paletted copy of img for GIF output.
func toPaletted(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}

	pal, ok := exactPalette(img, 256)
	if !ok {
		pal = palette.Plan9
	}
	bounds := img.Bounds()
	out := image.NewPaletted(bounds, pal)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	return out
}

// exactPalette returns the distinct colours of img in scan order, or false
// when there are more than limit of them.
func exactPalette(img image.Image, limit int) (color.Palette, bool) {
	bounds := img.Bounds()
	seen := make(map[color.NRGBA]struct{})
	var pal color.Palette
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(pal) == limit {
				return nil, false
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal, true
}
