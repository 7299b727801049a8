package transforms

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pixelform/pixelform/configs"
	"github.com/pixelform/pixelform/internal/server"
	"github.com/pixelform/pixelform/pkg/filters"
	"github.com/pixelform/pixelform/pkg/levels"
	"github.com/pixelform/pixelform/pkg/pixel"
	"github.com/pixelform/pixelform/pkg/tiles"
)

type (
	ctxBufferKey struct{}
	ctxFormatKey struct{}
)

// transformAPI is the base image transform API router.
type transformAPI struct {
	chi.Router
	srv    *server.Server
	engine filters.Engine
}

// SetupRoutes mounts the image transform routes on the server.
func SetupRoutes(s *server.Server) error {
	engine, err := filters.NewEngine(configs.Config.Images.Engine)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	api := &transformAPI{r, s, engine}

	r.With(api.withImage).Group(func(r chi.Router) {
		r.Post("/adjust", api.imageAdjust)
		r.Post("/partition", api.imagePartition)
		r.Post("/blur", api.imageBlur)
		r.Post("/sharpen", api.imageSharpen)
	})

	s.AddRoute("/api/images", r)
	return nil
}

// withImage decodes the source image, either from the request body or
// from a remote URL given by the "src" parameter, and stores its
// buffer and format in the request context.
func (api *transformAPI) withImage(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		var (
			buf    *pixel.Buffer
			format string
			err    error
		)

		if src := r.URL.Query().Get("src"); src != "" {
			buf, format, err = NewRemoteImage(src, nil)
		} else {
			buf, format, err = pixel.Decode(r.Body)
		}
		if err != nil {
			api.srv.TextMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ctxBufferKey{}, buf)
		ctx = context.WithValue(ctx, ctxFormatKey{}, format)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

func (api *transformAPI) buffer(r *http.Request) *pixel.Buffer {
	return r.Context().Value(ctxBufferKey{}).(*pixel.Buffer)
}

type adjustForm struct {
	Contrast   float64 `schema:"contrast"`
	Brightness float64 `schema:"brightness"`
	Gamma      float64 `schema:"gamma"`
}

// imageAdjust runs the automatic level adjustment when no parameter
// is given, the parametric one otherwise.
func (api *transformAPI) imageAdjust(w http.ResponseWriter, r *http.Request) {
	buf := api.buffer(r)

	q := r.URL.Query()
	if q.Get("contrast") == "" && q.Get("brightness") == "" && q.Get("gamma") == "" {
		api.sendImage(w, r, levels.AdjustAuto(buf))
		return
	}

	form := adjustForm{Gamma: 1}
	if msg := api.srv.BindQueryString(r, &form); msg != nil {
		api.srv.Message(w, r, msg)
		return
	}

	res, err := levels.AdjustParams(api.engine, buf, form.Contrast, form.Brightness, form.Gamma)
	if err != nil {
		api.srv.Error(w, r, err)
		return
	}
	api.sendImage(w, r, res)
}

type partitionForm struct {
	Size   int `schema:"size"`
	Width  int `schema:"width"`
	Height int `schema:"height"`
}

type gridResponse struct {
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	TileWidth  int        `json:"tile_width"`
	TileHeight int        `json:"tile_height"`
	Tiles      [][]string `json:"tiles"`
}

// imagePartition splits the image into tiles and returns them as a
// JSON grid of base64 encoded PNG images.
func (api *transformAPI) imagePartition(w http.ResponseWriter, r *http.Request) {
	buf := api.buffer(r)

	form := partitionForm{}
	if msg := api.srv.BindQueryString(r, &form); msg != nil {
		api.srv.Message(w, r, msg)
		return
	}

	tw, th := form.Width, form.Height
	if form.Size != 0 {
		tw, th = form.Size, form.Size
	}

	grid, err := tiles.Partition(buf, tw, th)
	if err != nil {
		var specErr *tiles.SizeSpecError
		if errors.As(err, &specErr) {
			api.srv.TextMessage(w, r, http.StatusBadRequest, specErr.Error())
			return
		}
		api.srv.Error(w, r, err)
		return
	}

	res := gridResponse{
		Rows:       grid.Rows(),
		Cols:       grid.Cols(),
		TileWidth:  tw,
		TileHeight: th,
		Tiles:      make([][]string, 0, grid.Rows()),
	}
	for _, row := range grid {
		items := make([]string, 0, len(row))
		for _, tile := range row {
			var b bytes.Buffer
			if err := pixel.Encode(&b, tile, "png", 0); err != nil {
				api.srv.Error(w, r, err)
				return
			}
			items = append(items, base64.StdEncoding.EncodeToString(b.Bytes()))
		}
		res.Tiles = append(res.Tiles, items)
	}

	api.srv.Render(w, r, http.StatusOK, res)
}

type radiusForm struct {
	Radius float64 `schema:"radius"`
}

// Validate implements the validation.Validatable interface.
func (f *radiusForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Radius, validation.Min(0.0)),
	)
}

func (api *transformAPI) imageBlur(w http.ResponseWriter, r *http.Request) {
	api.kernelFilter(w, r, func(buf *pixel.Buffer, radius float64) (*pixel.Buffer, error) {
		return filters.Blur(api.engine, buf, radius)
	})
}

func (api *transformAPI) imageSharpen(w http.ResponseWriter, r *http.Request) {
	api.kernelFilter(w, r, func(buf *pixel.Buffer, radius float64) (*pixel.Buffer, error) {
		return filters.Sharpen(api.engine, buf, radius)
	})
}

func (api *transformAPI) kernelFilter(
	w http.ResponseWriter, r *http.Request,
	fn func(*pixel.Buffer, float64) (*pixel.Buffer, error),
) {
	form := radiusForm{Radius: filters.DefaultRadius}
	if msg := api.srv.BindQueryString(r, &form); msg != nil {
		api.srv.Message(w, r, msg)
		return
	}

	res, err := fn(api.buffer(r), form.Radius)
	if err != nil {
		api.srv.Error(w, r, err)
		return
	}
	api.sendImage(w, r, res)
}

// sendImage encodes the buffer in the source image's format, falling
// back to JPEG when that format has no encoder.
func (api *transformAPI) sendImage(w http.ResponseWriter, r *http.Request, buf *pixel.Buffer) {
	format := r.Context().Value(ctxFormatKey{}).(string)
	if format != "gif" && format != "png" {
		format = "jpeg"
	}

	var b bytes.Buffer
	if err := pixel.Encode(&b, buf, format, configs.Config.Images.Quality); err != nil {
		api.srv.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", fmt.Sprintf("image/%s", format))
	w.WriteHeader(http.StatusOK)
	w.Write(b.Bytes())
}
