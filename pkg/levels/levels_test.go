package levels

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelform/pixelform/pkg/pixel"
)

// mockEnhancer records the applied steps and their factors.
type mockEnhancer struct {
	steps   []string
	factors []float64
	err     error
}

func (m *mockEnhancer) record(name string, b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.steps = append(m.steps, name)
	m.factors = append(m.factors, factor)
	return b.Clone(), nil
}

func (m *mockEnhancer) Gamma(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return m.record("gamma", b, factor)
}

func (m *mockEnhancer) Brightness(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return m.record("brightness", b, factor)
}

func (m *mockEnhancer) Contrast(b *pixel.Buffer, factor float64) (*pixel.Buffer, error) {
	return m.record("contrast", b, factor)
}

func TestAdjustAuto(t *testing.T) {
	t.Run("normalize", func(t *testing.T) {
		b := pixel.New(2, 2, 1, pixel.Grayscale)
		copy(b.Pix, []float64{0.2, 0.4, 0.6, 0.8})

		res := AdjustAuto(b)
		assert.Equal(t, pixel.Grayscale, res.ColorSpace)
		for i, expected := range []float64{0, 1.0 / 3, 2.0 / 3, 1} {
			assert.InDelta(t, expected, res.Pix[i], 1e-9)
		}

		// the input is left untouched
		assert.Equal(t, []float64{0.2, 0.4, 0.6, 0.8}, b.Pix)
	})

	t.Run("per channel", func(t *testing.T) {
		b := pixel.New(1, 2, 2, pixel.ColorSpace("GA"))
		copy(b.Pix, []float64{0.5, 0.1, 0.7, 0.3})

		res := AdjustAuto(b)
		for i, expected := range []float64{0, 0, 1, 1} {
			assert.InDelta(t, expected, res.Pix[i], 1e-9)
		}
	})

	t.Run("fixed point", func(t *testing.T) {
		b := pixel.New(2, 3, 3, pixel.RGB)
		for i := range b.Pix {
			b.Pix[i] = 0.1 + 0.04*float64(i)
		}

		once := AdjustAuto(b)
		twice := AdjustAuto(once)
		for i := range once.Pix {
			assert.InDelta(t, once.Pix[i], twice.Pix[i], 1e-9)
		}
	})

	t.Run("degenerate channel", func(t *testing.T) {
		// constant first channel, varying second
		b := pixel.New(2, 2, 2, pixel.ColorSpace("GA"))
		copy(b.Pix, []float64{0.5, 0.0, 0.5, 0.25, 0.5, 0.5, 0.5, 1.0})

		res := AdjustAuto(b)
		for i := 0; i < len(res.Pix); i += 2 {
			assert.Equal(t, 0.0, res.Pix[i])
		}
		assert.Equal(t, []float64{0, 0.25, 0.5, 1}, []float64{
			res.Pix[1], res.Pix[3], res.Pix[5], res.Pix[7],
		})
	})
}

func TestAdjustParams(t *testing.T) {
	newBuffer := func() *pixel.Buffer {
		b := pixel.New(2, 2, 3, pixel.RGB)
		for i := range b.Pix {
			b.Pix[i] = float64(i) / 12
		}
		return b
	}

	t.Run("identity", func(t *testing.T) {
		e := &mockEnhancer{}
		b := newBuffer()

		res, err := AdjustParams(e, b, 0, 0, 1)
		require.Nil(t, err)
		assert.Empty(t, e.steps)
		assert.Equal(t, b.Pix, res.Pix)
		assert.NotSame(t, b, res)
	})

	t.Run("order and factors", func(t *testing.T) {
		e := &mockEnhancer{}

		_, err := AdjustParams(e, newBuffer(), 0.5, -0.25, 2)
		require.Nil(t, err)
		assert.Equal(t, []string{"gamma", "brightness", "contrast"}, e.steps)
		assert.Equal(t, []float64{2, 0.75, 1.5}, e.factors)
	})

	t.Run("skip policy", func(t *testing.T) {
		tests := []struct {
			name    string
			c, b, g float64
			steps   []string
		}{
			{"contrast only", 0.5, 0, 1, []string{"contrast"}},
			{"brightness only", 0, 0.5, 1, []string{"brightness"}},
			{"gamma only", 0, 0, 0.5, []string{"gamma"}},
			{"no gamma", -0.2, 0.1, 1, []string{"brightness", "contrast"}},
		}

		for _, x := range tests {
			t.Run(x.name, func(t *testing.T) {
				e := &mockEnhancer{}
				_, err := AdjustParams(e, newBuffer(), x.c, x.b, x.g)
				require.Nil(t, err)
				assert.Equal(t, x.steps, e.steps)
			})
		}
	})

	t.Run("enhancer error", func(t *testing.T) {
		e := &mockEnhancer{err: errors.New("boom")}
		res, err := AdjustParams(e, newBuffer(), 0.5, 0, 1)
		assert.Nil(t, res)
		assert.EqualError(t, err, "boom")
	})

	t.Run("overloads", func(t *testing.T) {
		e1 := &mockEnhancer{}
		e2 := &mockEnhancer{}

		_, err := Adjust(e1, newBuffer(), 0.3)
		require.Nil(t, err)
		_, err = AdjustParams(e2, newBuffer(), 0.3, 0, 1)
		require.Nil(t, err)
		assert.Equal(t, e2.steps, e1.steps)
		assert.Equal(t, e2.factors, e1.factors)

		e1 = &mockEnhancer{}
		e2 = &mockEnhancer{}
		_, err = AdjustCB(e1, newBuffer(), 0.3, -0.1)
		require.Nil(t, err)
		_, err = AdjustParams(e2, newBuffer(), 0.3, -0.1, 1)
		require.Nil(t, err)
		assert.Equal(t, e2.steps, e1.steps)
		assert.Equal(t, e2.factors, e1.factors)
	})
}
