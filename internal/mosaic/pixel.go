package mosaic

import (
	"fmt"
	"image"
)

// MaxChannels is the largest channel count a Pixel can hold (RGBA).
const MaxChannels = 4

// Pixel is one pixel value. Only the first Channels() entries of the owning
// buffer are meaningful; the rest are zero.
type Pixel [MaxChannels]uint8

// NewPixel builds a Pixel from up to MaxChannels channel values.
func NewPixel(channels ...uint8) Pixel {
	var p Pixel
	copy(p[:], channels)
	return p
}

// PixelBuffer is the read/write pixel surface owned by the host.
type PixelBuffer interface {
	// Bounds returns the addressable rectangle.
	Bounds() image.Rectangle
	// Channels returns the number of channels per pixel (1..MaxChannels).
	Channels() int
	// PixelAt returns the pixel at (x, y).
	PixelAt(x, y int) (Pixel, error)
	// SetPixel writes p at (x, y).
	SetPixel(x, y int, p Pixel) error
}

// RegionReader is implemented by buffers that can read a whole rectangle at
// once. Pixels are appended to dst[:0] in row-major order.
type RegionReader interface {
	ReadRegion(r image.Rectangle, dst []Pixel) ([]Pixel, error)
}

// RegionFiller is implemented by buffers that can paint a rectangle with a
// single pixel value at once.
type RegionFiller interface {
	FillRegion(r image.Rectangle, p Pixel) error
}

// Rect returns the rectangle with top-left corner (x, y) and the given size.
func Rect(x, y, width, height int) image.Rectangle {
	return image.Rect(x, y, x+width, y+height)
}

// Buffer is an in-memory PixelBuffer with 8 bits per channel.
type Buffer struct {
	// Pix holds the pixels. The pixel at (x, y) starts at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*channels].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the buffer's bounds.
	Rect image.Rectangle

	channels int
}

var (
	_ PixelBuffer  = (*Buffer)(nil)
	_ RegionReader = (*Buffer)(nil)
	_ RegionFiller = (*Buffer)(nil)
)

// NewBuffer allocates a zeroed buffer covering r.
func NewBuffer(r image.Rectangle, channels int) (*Buffer, error) {
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: channel count %d not in 1..%d", ErrInvalidArgument, channels, MaxChannels)
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: buffer bounds %v have no area", ErrInvalidArgument, r)
	}

	return &Buffer{
		Pix:      make([]uint8, r.Dx()*r.Dy()*channels),
		Stride:   r.Dx() * channels,
		Rect:     r,
		channels: channels,
	}, nil
}

// Bounds returns the buffer's bounds.
func (b *Buffer) Bounds() image.Rectangle { return b.Rect }

// Channels returns the number of channels per pixel.
func (b *Buffer) Channels() int { return b.channels }

// PixOffset returns the index of the first element of Pix that corresponds
// to the pixel at (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return (y-b.Rect.Min.Y)*b.Stride + (x-b.Rect.Min.X)*b.channels
}

// PixelAt returns the pixel at (x, y).
func (b *Buffer) PixelAt(x, y int) (Pixel, error) {
	if !image.Pt(x, y).In(b.Rect) {
		return Pixel{}, fmt.Errorf("%w: pixel (%d,%d) outside %v", ErrOutOfBounds, x, y, b.Rect)
	}
	var p Pixel
	i := b.PixOffset(x, y)
	copy(p[:b.channels], b.Pix[i:i+b.channels])
	return p, nil
}

// SetPixel writes p at (x, y). Channels past Channels() are ignored.
func (b *Buffer) SetPixel(x, y int, p Pixel) error {
	if !image.Pt(x, y).In(b.Rect) {
		return fmt.Errorf("%w: pixel (%d,%d) outside %v", ErrOutOfBounds, x, y, b.Rect)
	}
	i := b.PixOffset(x, y)
	copy(b.Pix[i:i+b.channels], p[:b.channels])
	return nil
}

// ReadRegion appends the pixels of r to dst[:0] in row-major order.
func (b *Buffer) ReadRegion(r image.Rectangle, dst []Pixel) ([]Pixel, error) {
	if err := b.checkRegion(r); err != nil {
		return dst[:0], err
	}

	dst = dst[:0]
	n := b.channels
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Pix[b.PixOffset(r.Min.X, y):b.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += n {
			var p Pixel
			copy(p[:n], row[i:i+n])
			dst = append(dst, p)
		}
	}
	return dst, nil
}

// FillRegion paints every pixel of r with p.
func (b *Buffer) FillRegion(r image.Rectangle, p Pixel) error {
	if err := b.checkRegion(r); err != nil {
		return err
	}

	n := b.channels
	first := b.Pix[b.PixOffset(r.Min.X, r.Min.Y):b.PixOffset(r.Max.X, r.Min.Y)]
	for i := 0; i < len(first); i += n {
		copy(first[i:i+n], p[:n])
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		copy(b.Pix[b.PixOffset(r.Min.X, y):b.PixOffset(r.Max.X, y)], first)
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{
		Pix:      pix,
		Stride:   b.Stride,
		Rect:     b.Rect,
		channels: b.channels,
	}
}

func (b *Buffer) checkRegion(r image.Rectangle) error {
	if r.Empty() {
		return fmt.Errorf("%w: rectangle %v has no area", ErrInvalidArgument, r)
	}
	if !r.In(b.Rect) {
		return fmt.Errorf("%w: rectangle %v outside %v", ErrOutOfBounds, r, b.Rect)
	}
	return nil
}
