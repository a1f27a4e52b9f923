package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Rect returns the bounds as an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// edgeThreshold is the luma difference between neighbours that counts as an edge.
const edgeThreshold = 30

// detectEdges marks pixels whose luma differs from the right or lower
// neighbour by more than edgeThreshold.
//
// The result is indexed [y][x] relative to the image's top-left corner.
// Border pixels (x=0, y=0, x=width-1, y=height-1) are never edges.
func detectEdges(img image.Image) [][]bool {
	// ITU-R BT.601 luma. The result has R=G=B and Pix starts at the top-left pixel.
	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	luma := func(x, y int) int {
		return int(gray.Pix[y*gray.Stride+x*4])
	}

	edges := make([][]bool, height)
	for y := range height {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			c := luma(x, y)
			dx := abs(c - luma(x+1, y))
			dy := abs(c - luma(x, y+1))
			edges[y][x] = dx > edgeThreshold || dy > edgeThreshold
		}
	}
	return edges
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
