// Package filters applies convolution based filters to pixel buffers.
// The pixel math itself lives in an Engine implementation; this
// package owns the kernel derivation and the dispatch.
package filters

import (
	"fmt"
	"math"

	"github.com/pixelform/pixelform/pkg/levels"
	"github.com/pixelform/pixelform/pkg/pixel"
)

// DefaultRadius is the kernel radius used when a caller gives none.
const DefaultRadius = 2

// Kernel is a rectangular convolution matrix.
type Kernel struct {
	Width   int
	Height  int
	Weights []float64
}

// BoxKernel returns a normalized square averaging kernel for the
// given radius. The side length is 2*floor(radius)+1, so a radius
// below 1 yields the 1x1 identity kernel. Weights always sum to 1,
// which keeps the overall brightness unchanged under convolution.
func BoxKernel(radius float64) Kernel {
	side := 2*int(math.Floor(radius)) + 1
	if side < 1 {
		side = 1
	}

	weights := make([]float64, side*side)
	w := 1 / float64(side*side)
	for i := range weights {
		weights[i] = w
	}

	return Kernel{Width: side, Height: side, Weights: weights}
}

// Convolver is the external 2D convolution primitive. Boundary
// handling is owned by the implementation.
type Convolver interface {
	Convolve(b *pixel.Buffer, k Kernel) (*pixel.Buffer, error)
}

// Sharpener is the external unsharp-mask primitive.
type Sharpener interface {
	UnsharpMask(b *pixel.Buffer, radius float64) (*pixel.Buffer, error)
}

// Engine is a complete filter backend: the enhancement, convolution
// and unsharp-mask primitives behind the level and kernel transforms.
type Engine interface {
	levels.Enhancer
	Convolver
	Sharpener
}

// Blur convolves the buffer with a normalized box kernel derived from
// radius. Radius 0 is valid and close to an identity transform.
func Blur(c Convolver, b *pixel.Buffer, radius float64) (*pixel.Buffer, error) {
	if radius < 0 {
		return nil, fmt.Errorf("invalid blur radius %g", radius)
	}
	return c.Convolve(b, BoxKernel(radius))
}

// BlurDefault is Blur with the default radius.
func BlurDefault(c Convolver, b *pixel.Buffer) (*pixel.Buffer, error) {
	return Blur(c, b, DefaultRadius)
}

// Sharpen applies an unsharp mask of the given radius. A larger
// radius widens the edge enhancement effect.
func Sharpen(s Sharpener, b *pixel.Buffer, radius float64) (*pixel.Buffer, error) {
	if radius < 0 {
		return nil, fmt.Errorf("invalid sharpen radius %g", radius)
	}
	return s.UnsharpMask(b, radius)
}

// SharpenDefault is Sharpen with the default radius.
func SharpenDefault(s Sharpener, b *pixel.Buffer) (*pixel.Buffer, error) {
	return Sharpen(s, b, DefaultRadius)
}

var engines = map[string]func() Engine{}

// AddEngine adds a new filter engine to the available engines.
func AddEngine(name string, fn func() Engine) {
	engines[name] = fn
}

// NewEngine returns an instance of the named engine.
func NewEngine(name string) (Engine, error) {
	fn, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("engine %s not found", name)
	}

	return fn(), nil
}
