// Package imaging is the host side of the pixelation tools.
//
// It loads and saves image files, converts decoded images into the working
// pixel buffers used by package mosaic and back, and produces the reports and
// previews returned by the MCP server. Images handed to this package are never
// modified; every transform works on a cloned working layer.
//
// # Coordinate System
//
// All pixel coordinates are 0-based in the image's own coordinate space:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (X1,Y1) is inclusive (top-left), (X2,Y2) is exclusive (bottom-right)
//
// # Formats
//
// Decoding supports PNG, JPEG, GIF (standard library), BMP, TIFF and WebP
// (golang.org/x/image) and the raw ".pxb" pixel buffer format defined in
// this package. Encoding supports the same set; PNG, JPEG and BMP go through
// bild's imgio encoders, WebP through nativewebp.
//
// # Working Buffers
//
// ToBuffer negotiates the channel count for the core: 1 for grayscale
// sources, 3 for opaque colour images and 4 when any pixel is not fully
// opaque. Colours are compared as non-premultiplied 8-bit values.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless.
//
// # Error Handling
//
// Errors from package mosaic are wrapped with %w, so callers can test them
// with errors.Is(err, mosaic.ErrInvalidArgument) and mosaic.ErrOutOfBounds.
package imaging
