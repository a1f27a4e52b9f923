// Package ocr finds text in images using Tesseract, so the text can be
// pixelated.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It returns
// the bounding boxes of recognised words or text blocks, optionally filtered
// by confidence and by a regular expression over the recognised text.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// The default language is English ("eng").
//
// # Functions
//
//   - Find: boxes from an image file Tesseract can read directly
//   - FindInImage: boxes from a decoded image (any format this module loads)
//   - FindInRegion: boxes from part of a decoded image, in full-image coordinates
//
// # Temporary Files
//
// FindInImage and FindInRegion write a temporary PNG for Tesseract and delete
// it when OCR completes.
package ocr
