package app

import (
	"errors"
	"os"

	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pixelform/pixelform/configs"

	// Default filter engine
	_ "github.com/pixelform/pixelform/pkg/filters/native"
)

var rootCmd = &cobra.Command{
	Use:               "pixelform",
	PersistentPreRunE: appPersistentPreRun,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c",
		"", "Configuration file",
	)
	rootCmd.PersistentFlags().StringVarP(
		&configs.Config.Main.LogLevel, "level", "l",
		configs.Config.Main.LogLevel, "Log level",
	)
}

func appPersistentPreRun(_ *cobra.Command, _ []string) error {
	if configPath != "" {
		created, err := createConfigFile(configPath)
		if err != nil {
			return err
		}
		if created {
			if err := configs.WriteConfig(configPath); err != nil {
				return err
			}
		}
		if err := configs.LoadConfiguration(configPath); err != nil {
			return err
		}
	}

	// Enforce debug in dev mode
	if configs.Config.Main.DevMode {
		configs.Config.Main.LogLevel = "debug"
	}

	// Setup logger
	lvl, err := log.ParseLevel(configs.Config.Main.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.WithField("log_level", lvl).Debug()
	if configs.Config.Main.DevMode {
		log.SetFormatter(&log.TextFormatter{
			ForceColors: true,
		})
		log.SetOutput(colorable.NewColorableStdout())
		log.SetLevel(log.TraceLevel)
	}

	return nil
}

func createConfigFile(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	fd, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return false, err
	}
	return true, fd.Close()
}

// Run starts the application.
func Run() error {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal()
		os.Exit(1)
	}

	return nil
}
