package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
type Region struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// RegionOf converts a rectangle to a Region.
func RegionOf(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Pad grows the region by n pixels on every side. The result may extend past
// the image; PixelateRegions clips it.
func (r Region) Pad(n int) Region {
	return Region{X1: r.X1 - n, Y1: r.Y1 - n, X2: r.X2 + n, Y2: r.Y2 + n}
}

// regionRect returns the rectangle of region, or the image bounds when region is nil.
func regionRect(img image.Image, region *Region) image.Rectangle {
	if region == nil {
		return img.Bounds()
	}
	return region.Rect()
}

// PixelateImage replaces every tile of the region with its most frequent colour.
//
// The work happens on a working layer cloned from img; img itself is never
// modified and the pixelated copy is returned. A nil region pixelates the
// whole image.
//
// Parameters:
//   - ctx: Checked between tiles; cancellation returns ctx.Err().
//   - img: The source image.
//   - region: Optional area to pixelate. Must lie inside the image bounds.
//   - opts: Tile size, remainder policy and worker count.
//
// Returns:
//   - *image.NRGBA: The pixelated copy, with the same bounds as img.
//   - *mosaic.Result: Tile count and the area actually covered by tiles.
//   - error: Wraps mosaic.ErrInvalidArgument or mosaic.ErrOutOfBounds for bad
//     arguments.
func PixelateImage(ctx context.Context, img image.Image, region *Region, opts mosaic.Options) (*image.NRGBA, *mosaic.Result, error) {
	buf, err := ToBuffer(img)
	if err != nil {
		return nil, nil, err
	}

	res, err := mosaic.Pixelate(ctx, buf, regionRect(img, region), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pixelate: %w", err)
	}
	return FromBuffer(buf), res, nil
}

// PixelateRegions pixelates several regions of one image, in order, on a
// single working layer.
//
// Regions are clipped to the image bounds and regions that end up empty are
// skipped, so boxes from a text detector can be passed as they are. Each
// region has its own tile grid anchored at its top-left corner. Where
// regions overlap, the later region sees the output of the earlier one.
func PixelateRegions(ctx context.Context, img image.Image, regions []Region, opts mosaic.Options) (*image.NRGBA, []*mosaic.Result, error) {
	buf, err := ToBuffer(img)
	if err != nil {
		return nil, nil, err
	}

	bounds := img.Bounds()
	results := make([]*mosaic.Result, 0, len(regions))
	for _, region := range regions {
		r := region.Rect().Intersect(bounds)
		if r.Empty() {
			continue
		}
		res, err := mosaic.Pixelate(ctx, buf, r, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to pixelate region %v: %w", r, err)
		}
		results = append(results, res)
	}
	return FromBuffer(buf), results, nil
}
