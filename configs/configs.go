package configs

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
)

// Because we don't need viper's mess for just storing configuration from
// a source.
type config struct {
	Main   configMain   `toml:"main"`
	Server configServer `toml:"server"`
	Images configImages `toml:"images"`
}

type configMain struct {
	LogLevel string `toml:"log_level"`
	DevMode  bool   `toml:"dev_mode"`
}

type configServer struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type configImages struct {
	Engine     string `toml:"engine"`
	NumWorkers int    `toml:"workers"`
	Quality    int    `toml:"quality"`
}

// Config holds the configuration data from configuration files
// or flags.
//
// This variable sets some default values that might be overwritten
// by a configuration file.
var Config = config{
	Main: configMain{
		LogLevel: "info",
		DevMode:  false,
	},
	Server: configServer{
		Host: "127.0.0.1",
		Port: 5000,
	},
	Images: configImages{
		Engine:     "native",
		NumWorkers: runtime.NumCPU(),
		Quality:    80,
	},
}

// LoadConfiguration loads the configuration file.
func LoadConfiguration(configPath string) error {
	if configPath == "" {
		return nil
	}

	fd, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer fd.Close()

	dec := toml.NewDecoder(fd)
	return dec.Decode(&Config)
}

// WriteConfig writes configuration to a file.
func WriteConfig(filename string) error {
	fd, err := os.OpenFile(filename, os.O_RDWR|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(fd).
		Indentation("  ").
		Order(toml.OrderPreserve)

	if err = enc.Encode(Config); err != nil {
		defer fd.Close()
		return err
	}

	return fd.Close()
}
