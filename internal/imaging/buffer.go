package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// ChannelsFor returns the channel count a working buffer for img uses:
// 1 for grayscale images, 3 when every pixel is opaque and 4 otherwise.
func ChannelsFor(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		if o.Opaque() {
			return 3
		}
		return 4
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return 4
			}
		}
	}
	return 3
}

// ToBuffer copies img into a new working buffer with the same bounds.
//
// The image is normalised to non-premultiplied 8-bit RGBA first, so two
// pixels compare equal exactly when their 8-bit channel values are equal.
// The source image is not modified.
func ToBuffer(img image.Image) (*mosaic.Buffer, error) {
	bounds := img.Bounds()
	channels := ChannelsFor(img)

	buf, err := mosaic.NewBuffer(bounds, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate working buffer: %w", err)
	}

	// Clone returns an NRGBA image whose origin is (0,0).
	src := imaging.Clone(img)
	w := bounds.Dx()
	for y := range bounds.Dy() {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := buf.Pix[y*buf.Stride : y*buf.Stride+w*channels]
		if channels == 4 {
			copy(out, row)
			continue
		}
		for x := range w {
			copy(out[x*channels:(x+1)*channels], row[x*4:x*4+channels])
		}
	}
	return buf, nil
}

// FromBuffer converts a working buffer back to an image with the same bounds.
//
// One channel is read as gray, two as gray with alpha, three as RGB and four
// as non-premultiplied RGBA.
func FromBuffer(buf *mosaic.Buffer) *image.NRGBA {
	bounds := buf.Bounds()
	img := image.NewNRGBA(bounds)
	n := buf.Channels()
	w := bounds.Dx()

	for y := range bounds.Dy() {
		in := buf.Pix[y*buf.Stride : y*buf.Stride+w*n]
		out := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			s := in[x*n : (x+1)*n]
			d := out[x*4 : x*4+4]
			switch n {
			case 1:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], 0xff
			case 2:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			case 3:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
			default:
				copy(d, s)
			}
		}
	}
	return img
}
