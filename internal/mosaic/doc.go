// Package mosaic implements mode-filter pixelation.
//
// A region of a pixel buffer is partitioned into a grid of tiles. For every
// tile the most frequent exact pixel value (the mode colour) is determined
// and written back to every position of that tile. Colours are never
// blended, averaged or dithered, and tile sizes are absolute pixel counts.
//
// # Pixels
//
// A Pixel is a fixed array of MaxChannels 8-bit values. The buffer a pixel
// belongs to carries the channel count; channels past that count are always
// zero, so two pixels are equal exactly when all of their channels are equal.
//
// # Tiles
//
// Grid enumerates tiles in row-major order. When the region size is not a
// multiple of the tile size the Remainder policy decides what happens to the
// trailing column and row:
//
//   - RemainderClip (default): clipped tiles cover the remaining pixels, so
//     the union of all tiles equals the region.
//   - RemainderDrop: only full tiles are produced and the remainder strip is
//     left untouched.
//
// # Ties
//
// When several colours share the highest count, the colour first seen while
// reading the tile in row-major order wins.
//
// # Concurrency
//
// Tiles never overlap, so Pixelate can process them on several workers.
// Buffer is safe for concurrent reads and writes of disjoint rectangles;
// other PixelBuffer implementations must offer the same guarantee before
// Options.Workers is raised above one.
package mosaic
