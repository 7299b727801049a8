// Package levels adjusts the intensity levels of a pixel buffer,
// either automatically (per-channel normalization) or from explicit
// contrast, brightness and gamma parameters.
package levels

import (
	"math"

	"github.com/pixelform/pixelform/pkg/pixel"
)

// Enhancer is the per-channel enhancement collaborator used by the
// parametric adjustment. Each method scales the named quality of the
// image by the given factor and returns a new buffer.
type Enhancer interface {
	Gamma(b *pixel.Buffer, factor float64) (*pixel.Buffer, error)
	Brightness(b *pixel.Buffer, factor float64) (*pixel.Buffer, error)
	Contrast(b *pixel.Buffer, factor float64) (*pixel.Buffer, error)
}

// AdjustAuto normalizes each channel independently to [0, 1], using
// the channel's own min/max. A constant channel has no range to
// stretch; its scale is forced to 1 and the whole channel collapses
// to 0. The color space is left unchanged.
func AdjustAuto(b *pixel.Buffer) *pixel.Buffer {
	ch := b.Channels
	mins := make([]float64, ch)
	maxs := make([]float64, ch)
	for c := 0; c < ch; c++ {
		mins[c] = math.Inf(1)
		maxs[c] = math.Inf(-1)
	}

	for i, v := range b.Pix {
		c := i % ch
		if v < mins[c] {
			mins[c] = v
		}
		if v > maxs[c] {
			maxs[c] = v
		}
	}

	scales := make([]float64, ch)
	for c := 0; c < ch; c++ {
		scales[c] = maxs[c] - mins[c]
		if scales[c] == 0 {
			scales[c] = 1
		}
	}

	out := pixel.New(b.Height, b.Width, ch, b.ColorSpace)
	for i, v := range b.Pix {
		c := i % ch
		out.Pix[i] = (v - mins[c]) / scales[c]
	}
	return out
}

// AdjustParams applies gamma, brightness and contrast adjustments, in
// that order. A step whose parameter is the identity (gamma 1,
// brightness 0, contrast 0) is skipped entirely; a call where every
// step is skipped returns an exact copy of the input.
//
// Brightness and contrast are passed to the enhancer as multiplicative
// factors (parameter + 1), gamma as the factor itself.
func AdjustParams(e Enhancer, b *pixel.Buffer, contrast, brightness, gamma float64) (*pixel.Buffer, error) {
	out := b
	var err error

	if gamma != 1 {
		if out, err = e.Gamma(out, gamma); err != nil {
			return nil, err
		}
	}
	if brightness != 0 {
		if out, err = e.Brightness(out, brightness+1); err != nil {
			return nil, err
		}
	}
	if contrast != 0 {
		if out, err = e.Contrast(out, contrast+1); err != nil {
			return nil, err
		}
	}

	if out == b {
		return b.Clone(), nil
	}
	return out, nil
}

// Adjust is AdjustParams with only a contrast parameter.
func Adjust(e Enhancer, b *pixel.Buffer, contrast float64) (*pixel.Buffer, error) {
	return AdjustParams(e, b, contrast, 0, 1)
}

// AdjustCB is AdjustParams with contrast and brightness parameters.
func AdjustCB(e Enhancer, b *pixel.Buffer, contrast, brightness float64) (*pixel.Buffer, error) {
	return AdjustParams(e, b, contrast, brightness, 1)
}
