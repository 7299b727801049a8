package pixel

import "fmt"

// ColorSpace is an opaque tag describing how a buffer's channels must
// be interpreted. Transforms carry it through unchanged.
type ColorSpace string

// Color spaces known to the codec layer. A buffer may carry any other
// tag; the transforms never look inside it.
const (
	Grayscale ColorSpace = "Grayscale"
	RGB       ColorSpace = "RGB"
	RGBA      ColorSpace = "RGBA"
	CMYK      ColorSpace = "CMYK"
)

// Buffer is a dense rectangular array of intensity samples. The channel
// dimension is always explicit: single-channel data is Channels == 1,
// never a lower-rank shape.
//
// Samples are stored in Pix, row-major and channel-interleaved, with
// nominal values in [0, 1]. Pix[(y*Width+x)*Channels+c] is channel c of
// the pixel at (y, x).
//
// Transforms treat buffers as immutable: they read their input and
// return a newly allocated buffer.
type Buffer struct {
	Height     int
	Width      int
	Channels   int
	ColorSpace ColorSpace
	Pix        []float64
}

// New returns an empty buffer of the given shape. It panics when a
// dimension is not positive; a malformed shape is a defect in the
// caller, not a runtime condition.
func New(height, width, channels int, cs ColorSpace) *Buffer {
	if height <= 0 || width <= 0 || channels <= 0 {
		panic(fmt.Sprintf("pixel: invalid buffer shape (%d, %d, %d)", height, width, channels))
	}
	return &Buffer{
		Height:     height,
		Width:      width,
		Channels:   channels,
		ColorSpace: cs,
		Pix:        make([]float64, height*width*channels),
	}
}

// Offset returns the index in Pix of channel 0 of the pixel at (y, x).
func (b *Buffer) Offset(y, x int) int {
	return (y*b.Width + x) * b.Channels
}

// At returns channel c of the pixel at (y, x).
func (b *Buffer) At(y, x, c int) float64 {
	return b.Pix[b.Offset(y, x)+c]
}

// Set sets channel c of the pixel at (y, x).
func (b *Buffer) Set(y, x, c int, v float64) {
	b.Pix[b.Offset(y, x)+c] = v
}

// Shape returns the buffer's (height, width, channels) triple.
func (b *Buffer) Shape() (int, int, int) {
	return b.Height, b.Width, b.Channels
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := New(b.Height, b.Width, b.Channels, b.ColorSpace)
	copy(out.Pix, b.Pix)
	return out
}
