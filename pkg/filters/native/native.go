// Package native provides the default filter engine, backed by the
// bild image processing library.
package native

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"

	"github.com/pixelform/pixelform/pkg/filters"
	"github.com/pixelform/pixelform/pkg/pixel"
)

func init() {
	filters.AddEngine("native", New)
}

// Engine implements filters.Engine on top of bild. Buffers pass
// through an 8-bit RGBA interchange with samples clamped to [0, 1],
// so results are quantized to 8-bit precision. Convolution clamps at
// the image borders (edge pixels are extended).
type Engine struct{}

// New returns a new native engine instance.
func New() filters.Engine {
	return &Engine{}
}

// Gamma gamma-corrects the buffer with the given factor.
func (e *Engine) Gamma(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return e.apply(b, func(m image.Image) *image.RGBA {
		return adjust.Gamma(m, factor)
	})
}

// Brightness scales the perceived brightness by the given factor
// (1 leaves the image unchanged).
func (e *Engine) Brightness(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return e.apply(b, func(m image.Image) *image.RGBA {
		return adjust.Brightness(m, factor-1)
	})
}

// Contrast scales the perceived contrast by the given factor
// (1 leaves the image unchanged).
func (e *Engine) Contrast(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return e.apply(b, func(m image.Image) *image.RGBA {
		return adjust.Contrast(m, factor-1)
	})
}

// Convolve applies the kernel to the buffer.
func (e *Engine) Convolve(b *pixel.Buffer, k filters.Kernel) (*pixel.Buffer, error) {
	kernel := &convolution.Kernel{
		Matrix: k.Weights,
		Width:  k.Width,
		Height: k.Height,
	}

	return e.apply(b, func(m image.Image) *image.RGBA {
		return convolution.Convolve(m, kernel, &convolution.Options{})
	})
}

// UnsharpMask sharpens the buffer with an unsharp mask of the given
// radius.
func (e *Engine) UnsharpMask(b *pixel.Buffer, radius float64) (*pixel.Buffer, error) {
	return e.apply(b, func(m image.Image) *image.RGBA {
		return effect.UnsharpMask(m, radius, 1)
	})
}

func (e *Engine) apply(b *pixel.Buffer, fn func(image.Image) *image.RGBA) (*pixel.Buffer, error) {
	src, err := toNRGBA(b)
	if err != nil {
		return nil, err
	}

	return fromRGBA(fn(src), b), nil
}

// toNRGBA converts a buffer to the engine's interchange format. Gray
// buffers are replicated over R, G and B so the shape can be restored
// afterwards.
func toNRGBA(b *pixel.Buffer) (*image.NRGBA, error) {
	switch b.Channels {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("no filter support for %d channels (%s)", b.Channels, b.ColorSpace)
	}
	if b.Channels == 4 && b.ColorSpace == pixel.CMYK {
		return nil, fmt.Errorf("no filter support for %s buffers", b.ColorSpace)
	}

	m := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.Offset(y, x)
			j := m.PixOffset(x, y)
			switch b.Channels {
			case 1:
				v := clamp255(b.Pix[i])
				m.Pix[j] = v
				m.Pix[j+1] = v
				m.Pix[j+2] = v
				m.Pix[j+3] = 255
			case 3:
				m.Pix[j] = clamp255(b.Pix[i])
				m.Pix[j+1] = clamp255(b.Pix[i+1])
				m.Pix[j+2] = clamp255(b.Pix[i+2])
				m.Pix[j+3] = 255
			case 4:
				m.Pix[j] = clamp255(b.Pix[i])
				m.Pix[j+1] = clamp255(b.Pix[i+1])
				m.Pix[j+2] = clamp255(b.Pix[i+2])
				m.Pix[j+3] = clamp255(b.Pix[i+3])
			}
		}
	}
	return m, nil
}

// fromRGBA converts a filter result back to a buffer with the shape
// and color space of the reference buffer. The result alpha is
// premultiplied, hence the conversion through color.NRGBAModel.
func fromRGBA(m *image.RGBA, ref *pixel.Buffer) *pixel.Buffer {
	out := pixel.New(ref.Height, ref.Width, ref.Channels, ref.ColorSpace)
	for y := 0; y < ref.Height; y++ {
		for x := 0; x < ref.Width; x++ {
			px := color.NRGBAModel.Convert(m.RGBAAt(x, y)).(color.NRGBA)
			i := out.Offset(y, x)
			switch ref.Channels {
			case 1:
				out.Pix[i] = float64(px.R) / 255
			case 3:
				out.Pix[i] = float64(px.R) / 255
				out.Pix[i+1] = float64(px.G) / 255
				out.Pix[i+2] = float64(px.B) / 255
			case 4:
				out.Pix[i] = float64(px.R) / 255
				out.Pix[i+1] = float64(px.G) / 255
				out.Pix[i+2] = float64(px.B) / 255
				out.Pix[i+3] = float64(px.A) / 255
			}
		}
	}
	return out
}

func clamp255(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
