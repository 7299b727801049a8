package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pixelform/pixelform/configs"
	"github.com/pixelform/pixelform/internal/server"
	"github.com/pixelform/pixelform/internal/transforms"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.PersistentFlags().StringVarP(
		&configs.Config.Server.Host, "host", "H",
		configs.Config.Server.Host, "server host")
	serveCmd.PersistentFlags().IntVarP(
		&configs.Config.Server.Port, "port", "p",
		configs.Config.Server.Port, "server port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the image transform HTTP server",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	s := server.New("/")
	if err := transforms.SetupRoutes(s); err != nil {
		return err
	}

	log.WithField("url", fmt.Sprintf(
		"http://%s:%d%s",
		configs.Config.Server.Host, configs.Config.Server.Port, s.BasePath,
	)).Info("Starting server")

	return s.ListenAndServe()
}
