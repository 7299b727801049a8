// Package tiles partitions a pixel buffer into a grid of equally
// sized sub-buffers.
package tiles

import (
	"fmt"

	"github.com/pixelform/pixelform/pkg/pixel"
)

// Grid is the result of a partition: rows of tiles in row-major
// order. It may be empty when no complete tile fits the source.
type Grid [][]*pixel.Buffer

// Rows returns the number of tile rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of tile columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// SizeSpecError reports an invalid tile size. The source buffer of
// the failed call is left untouched and can still be used.
type SizeSpecError struct {
	Width  int
	Height int
}

func (e *SizeSpecError) Error() string {
	return fmt.Sprintf("(%d, %d) is not a valid size specification for image partitions", e.Width, e.Height)
}

// Partition splits the buffer into tiles of tileWidth x tileHeight
// pixels. Trailing strips smaller than a full tile are dropped, never
// padded. When the tile is larger than the image in either dimension,
// the result is an empty grid. Each tile is a fresh buffer inheriting
// the source color space.
func Partition(b *pixel.Buffer, tileWidth, tileHeight int) (Grid, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, &SizeSpecError{Width: tileWidth, Height: tileHeight}
	}

	rows := b.Height / tileHeight
	cols := b.Width / tileWidth

	grid := Grid{}
	for yi := 0; yi < rows; yi++ {
		row := make([]*pixel.Buffer, 0, cols)
		for xi := 0; xi < cols; xi++ {
			row = append(row, extract(b, xi*tileWidth, yi*tileHeight, tileWidth, tileHeight))
		}
		if len(row) > 0 {
			grid = append(grid, row)
		}
	}
	return grid, nil
}

// PartitionSquare splits the buffer into s x s tiles.
func PartitionSquare(b *pixel.Buffer, s int) (Grid, error) {
	return Partition(b, s, s)
}

func extract(b *pixel.Buffer, x, y, w, h int) *pixel.Buffer {
	out := pixel.New(h, w, b.Channels, b.ColorSpace)
	span := w * b.Channels
	for yy := 0; yy < h; yy++ {
		src := b.Offset(y+yy, x)
		copy(out.Pix[yy*span:(yy+1)*span], b.Pix[src:src+span])
	}
	return out
}
