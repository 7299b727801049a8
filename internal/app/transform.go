package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pixelform/pixelform/configs"
	"github.com/pixelform/pixelform/internal/transforms"
	"github.com/pixelform/pixelform/pkg/filters"
	"github.com/pixelform/pixelform/pkg/levels"
	"github.com/pixelform/pixelform/pkg/pixel"
	"github.com/pixelform/pixelform/pkg/tiles"
)

var (
	outputDir string

	adjContrast   float64
	adjBrightness float64
	adjGamma      float64

	filterRadius float64

	tileSize   int
	tileWidth  int
	tileHeight int
)

func init() {
	for _, c := range []*cobra.Command{adjustCmd, partitionCmd, blurCmd, sharpenCmd} {
		c.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: alongside the source)")
		rootCmd.AddCommand(c)
	}

	adjustCmd.Flags().Float64Var(&adjContrast, "contrast", 0, "contrast adjustment")
	adjustCmd.Flags().Float64Var(&adjBrightness, "brightness", 0, "brightness adjustment")
	adjustCmd.Flags().Float64Var(&adjGamma, "gamma", 1, "gamma adjustment")

	partitionCmd.Flags().IntVarP(&tileSize, "size", "s", 0, "square tile size")
	partitionCmd.Flags().IntVarP(&tileWidth, "width", "W", 0, "tile width")
	partitionCmd.Flags().IntVarP(&tileHeight, "height", "H", 0, "tile height")

	blurCmd.Flags().Float64VarP(&filterRadius, "radius", "r", filters.DefaultRadius, "kernel radius")
	sharpenCmd.Flags().Float64VarP(&filterRadius, "radius", "r", filters.DefaultRadius, "kernel radius")
}

var adjustCmd = &cobra.Command{
	Use:   "adjust [flags] file...",
	Short: "Adjust image levels",
	Long: "Adjust image levels. Without parameters each channel is normalized\n" +
		"to its full range; with parameters the given contrast, brightness\n" +
		"and gamma adjustments are applied.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		auto := !c.Flags().Changed("contrast") &&
			!c.Flags().Changed("brightness") &&
			!c.Flags().Changed("gamma")

		engine, err := filters.NewEngine(configs.Config.Images.Engine)
		if err != nil {
			return err
		}

		return batch(args, func(l *log.Entry, src string) error {
			buf, format, err := loadBuffer(src)
			if err != nil {
				return err
			}

			var res *pixel.Buffer
			if auto {
				res = levels.AdjustAuto(buf)
			} else {
				if res, err = levels.AdjustParams(engine, buf, adjContrast, adjBrightness, adjGamma); err != nil {
					return err
				}
			}

			return saveBuffer(l, res, src, "adjust", format)
		})
	},
}

var partitionCmd = &cobra.Command{
	Use:   "partition [flags] file...",
	Short: "Partition an image into an array of tiles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tw, th := tileWidth, tileHeight
		if tileSize != 0 {
			tw, th = tileSize, tileSize
		}

		return batch(args, func(l *log.Entry, src string) error {
			buf, format, err := loadBuffer(src)
			if err != nil {
				return err
			}

			grid, err := tiles.Partition(buf, tw, th)
			if err != nil {
				return err
			}
			if grid.Rows() == 0 {
				l.Warn("no complete tile fits the image")
				return nil
			}

			for yi, row := range grid {
				for xi, tile := range row {
					name := fmt.Sprintf("tile-%d-%d", yi, xi)
					if err := saveBuffer(l, tile, src, name, format); err != nil {
						return err
					}
				}
			}
			return nil
		})
	},
}

var blurCmd = &cobra.Command{
	Use:   "blur [flags] file...",
	Short: "Blur an image with a box kernel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return kernelFilter(args, "blur", func(e filters.Engine, b *pixel.Buffer, r float64) (*pixel.Buffer, error) {
			return filters.Blur(e, b, r)
		})
	},
}

var sharpenCmd = &cobra.Command{
	Use:   "sharpen [flags] file...",
	Short: "Sharpen an image with an unsharp mask",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return kernelFilter(args, "sharpen", func(e filters.Engine, b *pixel.Buffer, r float64) (*pixel.Buffer, error) {
			return filters.Sharpen(e, b, r)
		})
	},
}

func kernelFilter(args []string, suffix string, fn func(filters.Engine, *pixel.Buffer, float64) (*pixel.Buffer, error)) error {
	engine, err := filters.NewEngine(configs.Config.Images.Engine)
	if err != nil {
		return err
	}

	return batch(args, func(l *log.Entry, src string) error {
		buf, format, err := loadBuffer(src)
		if err != nil {
			return err
		}

		res, err := fn(engine, buf, filterRadius)
		if err != nil {
			return err
		}
		return saveBuffer(l, res, src, suffix, format)
	})
}

func batch(sources []string, fn func(l *log.Entry, src string) error) error {
	if failed := transforms.RunBatch(sources, fn); failed > 0 {
		return transforms.BatchError(failed)
	}
	return nil
}

func loadBuffer(src string) (*pixel.Buffer, string, error) {
	fd, err := os.Open(src)
	if err != nil {
		return nil, "", err
	}
	defer fd.Close()

	return pixel.Decode(fd)
}

func saveBuffer(l *log.Entry, b *pixel.Buffer, src, suffix, format string) error {
	if format != "gif" && format != "png" {
		format = "jpeg"
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(src)
	}

	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	dest := filepath.Join(dir, fmt.Sprintf("%s.%s.%s", base, suffix, format))

	fd, err := os.Create(dest)
	if err != nil {
		return err
	}

	if err := pixel.Encode(fd, b, format, configs.Config.Images.Quality); err != nil {
		defer fd.Close()
		return err
	}

	l.WithField("dest", dest).Debug("saved")
	return fd.Close()
}
