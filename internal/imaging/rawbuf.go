package imaging

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/pixelise-mcp/internal/mosaic"
)

// RawMagic starts every .pxb file.
const RawMagic = "PXB1"

// maxRawBytes caps the decoded pixel data of a .pxb file.
const maxRawBytes = 1 << 30

// ErrBadRaw is returned for .pxb data with a bad header.
var ErrBadRaw = errors.New("invalid pxb data")

// rawHeader is the fixed little-endian header of a .pxb file. The
// zstd-compressed pixel rows follow it, top to bottom with no padding.
type rawHeader struct {
	Magic    [4]byte
	Width    uint32
	Height   uint32
	Channels uint32
	MinX     int32
	MinY     int32
}

func init() {
	image.RegisterFormat("pxb", RawMagic, decodeRaw, decodeRawConfig)
}

// WriteRaw writes buf to w in the .pxb format, keeping the channel count and
// origin so ReadRaw returns an identical buffer.
func WriteRaw(w io.Writer, buf *mosaic.Buffer) error {
	bounds := buf.Bounds()
	hdr := rawHeader{
		Width:    uint32(bounds.Dx()),
		Height:   uint32(bounds.Dy()),
		Channels: uint32(buf.Channels()),
		MinX:     int32(bounds.Min.X),
		MinY:     int32(bounds.Min.Y),
	}
	copy(hdr.Magic[:], RawMagic)
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("failed to write pxb header: %w", err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	rowLen := bounds.Dx() * buf.Channels()
	for y := range bounds.Dy() {
		if _, err := enc.Write(buf.Pix[y*buf.Stride : y*buf.Stride+rowLen]); err != nil {
			enc.Close()
			return fmt.Errorf("failed to write pxb pixels: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish pxb pixels: %w", err)
	}
	return nil
}

// ReadRaw reads a buffer written by WriteRaw.
func ReadRaw(r io.Reader) (*mosaic.Buffer, error) {
	hdr, err := readRawHeader(r)
	if err != nil {
		return nil, err
	}

	bounds := mosaic.Rect(int(hdr.MinX), int(hdr.MinY), int(hdr.Width), int(hdr.Height))
	buf, err := mosaic.NewBuffer(bounds, int(hdr.Channels))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRaw, err)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	if _, err := io.ReadFull(dec, buf.Pix); err != nil {
		return nil, fmt.Errorf("failed to read pxb pixels: %w", err)
	}
	return buf, nil
}

func readRawHeader(r io.Reader) (*rawHeader, error) {
	var hdr rawHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("failed to read pxb header: %w", err)
	}
	if string(hdr.Magic[:]) != RawMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadRaw, hdr.Magic[:])
	}
	if hdr.Channels < 1 || hdr.Channels > mosaic.MaxChannels {
		return nil, fmt.Errorf("%w: channel count %d", ErrBadRaw, hdr.Channels)
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrBadRaw, hdr.Width, hdr.Height)
	}
	if uint64(hdr.Width)*uint64(hdr.Height)*uint64(hdr.Channels) > maxRawBytes {
		return nil, fmt.Errorf("%w: image %dx%d too large", ErrBadRaw, hdr.Width, hdr.Height)
	}
	return &hdr, nil
}

func decodeRaw(r io.Reader) (image.Image, error) {
	buf, err := ReadRaw(r)
	if err != nil {
		return nil, err
	}
	return FromBuffer(buf), nil
}

func decodeRawConfig(r io.Reader) (image.Config, error) {
	hdr, err := readRawHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(hdr.Width),
		Height:     int(hdr.Height),
	}, nil
}
