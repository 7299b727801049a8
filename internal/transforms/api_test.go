package transforms

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelform/pixelform/internal/server"

	_ "github.com/pixelform/pixelform/pkg/filters/native"
)

func newServer(t *testing.T) *httptest.Server {
	s := server.New("/")
	if err := SetupRoutes(s); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Router)
	t.Cleanup(ts.Close)
	return ts
}

func newPNG(t *testing.T, w, h int) []byte {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func post(t *testing.T, url string, body []byte) *http.Response {
	rsp, err := http.Post(url, "image/png", bytes.NewReader(body))
	require.Nil(t, err)
	t.Cleanup(func() { rsp.Body.Close() })
	return rsp
}

func decodeImage(t *testing.T, rsp *http.Response) image.Image {
	m, _, err := image.Decode(rsp.Body)
	require.Nil(t, err)
	return m
}

func TestImageAdjust(t *testing.T) {
	ts := newServer(t)
	src := newPNG(t, 32, 24)

	t.Run("auto", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/adjust", src)
		assert.Equal(t, 200, rsp.StatusCode)
		assert.Equal(t, "image/png", rsp.Header.Get("Content-Type"))

		m := decodeImage(t, rsp)
		assert.Equal(t, 32, m.Bounds().Dx())
		assert.Equal(t, 24, m.Bounds().Dy())
	})

	t.Run("parametric", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/adjust?contrast=0.5&brightness=-0.1", src)
		assert.Equal(t, 200, rsp.StatusCode)

		m := decodeImage(t, rsp)
		assert.Equal(t, 32, m.Bounds().Dx())
	})

	t.Run("bad image", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/adjust", []byte("bogus"))
		assert.Equal(t, 400, rsp.StatusCode)
	})
}

func TestImagePartition(t *testing.T) {
	ts := newServer(t)

	t.Run("square", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/partition?size=16", newPNG(t, 32, 32))
		assert.Equal(t, 200, rsp.StatusCode)

		var res gridResponse
		require.Nil(t, json.NewDecoder(rsp.Body).Decode(&res))
		assert.Equal(t, 2, res.Rows)
		assert.Equal(t, 2, res.Cols)
		require.Equal(t, 2, len(res.Tiles))

		// every tile is a 16x16 png
		for _, row := range res.Tiles {
			require.Equal(t, 2, len(row))
			for _, item := range row {
				raw, err := base64.StdEncoding.DecodeString(item)
				require.Nil(t, err)

				m, format, err := image.Decode(bytes.NewReader(raw))
				require.Nil(t, err)
				assert.Equal(t, "png", format)
				assert.Equal(t, 16, m.Bounds().Dx())
				assert.Equal(t, 16, m.Bounds().Dy())
			}
		}
	})

	t.Run("rectangular", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/partition?width=32&height=8", newPNG(t, 32, 32))
		assert.Equal(t, 200, rsp.StatusCode)

		var res gridResponse
		require.Nil(t, json.NewDecoder(rsp.Body).Decode(&res))
		assert.Equal(t, 4, res.Rows)
		assert.Equal(t, 1, res.Cols)
	})

	t.Run("empty grid", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/partition?size=64", newPNG(t, 32, 32))
		assert.Equal(t, 200, rsp.StatusCode)

		var res gridResponse
		require.Nil(t, json.NewDecoder(rsp.Body).Decode(&res))
		assert.Equal(t, 0, res.Rows)
		assert.Equal(t, 0, res.Cols)
		assert.Equal(t, 0, len(res.Tiles))
	})

	t.Run("invalid size", func(t *testing.T) {
		rsp := post(t, ts.URL+"/api/images/partition?width=0&height=300", newPNG(t, 32, 32))
		assert.Equal(t, 400, rsp.StatusCode)

		var msg server.Message
		require.Nil(t, json.NewDecoder(rsp.Body).Decode(&msg))
		assert.Equal(t, "(0, 300) is not a valid size specification for image partitions", msg.Message)
	})
}

func TestImageFilters(t *testing.T) {
	ts := newServer(t)
	src := newPNG(t, 24, 24)

	for _, route := range []string{"blur", "sharpen"} {
		t.Run(route, func(t *testing.T) {
			t.Run("default radius", func(t *testing.T) {
				rsp := post(t, ts.URL+"/api/images/"+route, src)
				assert.Equal(t, 200, rsp.StatusCode)

				m := decodeImage(t, rsp)
				assert.Equal(t, 24, m.Bounds().Dx())
				assert.Equal(t, 24, m.Bounds().Dy())
			})

			t.Run("radius", func(t *testing.T) {
				rsp := post(t, ts.URL+"/api/images/"+route+"?radius=4", src)
				assert.Equal(t, 200, rsp.StatusCode)
			})

			t.Run("negative radius", func(t *testing.T) {
				rsp := post(t, ts.URL+"/api/images/"+route+"?radius=-1", src)
				assert.Equal(t, 400, rsp.StatusCode)
			})
		})
	}
}
