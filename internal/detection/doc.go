// Package detection locates likely text in an image without an OCR engine.
//
// DetectTextRegions slides windows of several sizes across an edge map and
// keeps windows whose edge density and horizontal structure look like lines
// of text. Candidates that overlap are merged, so the returned regions are
// pairwise disjoint and can be pixelated one after another.
//
// The result is a heuristic. It finds text-like texture, including texture
// that is not text, and may miss large or sparse lettering. When Tesseract is
// installed the ocr package gives tighter boxes.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin at the image's top-left corner (bounds.Min)
//   - X increases rightward
//   - Y increases downward
//   - Bounds are half-open: X2 and Y2 are exclusive
package detection
