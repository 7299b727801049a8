package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"image/gif"  // GIF decoder and encoder
	"image/jpeg" // JPEG decoder and encoder
	"image/png"  // PNG decoder and encoder

	_ "github.com/biessek/golang-ico" // ICO decoder
	_ "golang.org/x/image/bmp"        // BMP decoder
	_ "golang.org/x/image/tiff"       // TIFF decoder
	_ "golang.org/x/image/webp"       // WEBP decoder
)

// Decode reads an encoded image and returns its pixel buffer along
// with the source format name.
func Decode(r io.Reader) (*Buffer, string, error) {
	var b bytes.Buffer
	r1 := io.TeeReader(r, &b)
	c, format, err := image.DecodeConfig(r1)
	if err != nil {
		return nil, "", err
	}

	// Limit image size to 30Mpx
	if c.Width*c.Height > 30000000 {
		return nil, "", errors.New("image is too big")
	}

	m, _, err := image.Decode(io.MultiReader(&b, r))
	if err != nil {
		return nil, "", err
	}

	return FromImage(m), format, nil
}

// FromImage converts a decoded image to a pixel buffer. Grayscale
// images become single-channel buffers, CMYK images four-channel
// buffers, everything else three (opaque) or four (with alpha)
// channels. Samples are 8-bit precision scaled to [0, 1].
func FromImage(m image.Image) *Buffer {
	bounds := m.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	switch src := m.(type) {
	case *image.Gray:
		out := New(h, w, 1, Grayscale)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) / 255
			}
		}
		return out
	case *image.CMYK:
		out := New(h, w, 4, CMYK)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				px := src.CMYKAt(bounds.Min.X+x, bounds.Min.Y+y)
				i := out.Offset(y, x)
				out.Pix[i] = float64(px.C) / 255
				out.Pix[i+1] = float64(px.M) / 255
				out.Pix[i+2] = float64(px.Y) / 255
				out.Pix[i+3] = float64(px.K) / 255
			}
		}
		return out
	}

	channels, cs := 4, RGBA
	if op, ok := m.(interface{ Opaque() bool }); ok && op.Opaque() {
		channels, cs = 3, RGB
	}

	out := New(h, w, channels, cs)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := color.NRGBAModel.Convert(m.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := out.Offset(y, x)
			out.Pix[i] = float64(px.R) / 255
			out.Pix[i+1] = float64(px.G) / 255
			out.Pix[i+2] = float64(px.B) / 255
			if channels == 4 {
				out.Pix[i+3] = float64(px.A) / 255
			}
		}
	}
	return out
}

// Image converts the buffer back to an image, clamping samples to
// [0, 1] and quantizing to 8 bits. It returns an error when the
// channel layout has no image counterpart.
func (b *Buffer) Image() (image.Image, error) {
	switch {
	case b.Channels == 1:
		m := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
		for i, v := range b.Pix {
			m.Pix[i] = quantize(v)
		}
		return m, nil
	case b.Channels == 4 && b.ColorSpace == CMYK:
		m := image.NewCMYK(image.Rect(0, 0, b.Width, b.Height))
		for i, v := range b.Pix {
			m.Pix[i] = quantize(v)
		}
		return m, nil
	case b.Channels == 3:
		m := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				i := b.Offset(y, x)
				m.SetNRGBA(x, y, color.NRGBA{
					R: quantize(b.Pix[i]),
					G: quantize(b.Pix[i+1]),
					B: quantize(b.Pix[i+2]),
					A: 255,
				})
			}
		}
		return m, nil
	case b.Channels == 4:
		m := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		for i, v := range b.Pix {
			m.Pix[i] = quantize(v)
		}
		return m, nil
	}

	return nil, fmt.Errorf("no image representation for %d channels (%s)", b.Channels, b.ColorSpace)
}

// Encode writes the buffer to w in the given format. An empty format,
// or any format without an encoder, falls back to JPEG.
func Encode(w io.Writer, b *Buffer, format string, quality int) error {
	m, err := b.Image()
	if err != nil {
		return err
	}

	switch format {
	case "gif":
		return gif.Encode(w, m, &gif.Options{NumColors: 256})
	case "png":
		return png.Encode(w, m)
	}

	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return jpeg.Encode(w, m, &jpeg.Options{Quality: quality})
}

func quantize(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
