package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/automatedhome/allyscheduler/pkg/logging"
	"github.com/automatedhome/allyscheduler/pkg/types"
)

var (
	logger zerolog.Logger
	cfg    *types.Config

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "allyscheduler",
	Short:         "Weekly heating schedules for Danfoss Ally thermostats over MQTT",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", types.DefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file once per run. Without the broker the
// file may be absent and defaults are used.
func loadConfig(needBroker bool) error {
	var err error
	cfg, err = types.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && !needBroker {
		cfg = &types.Config{}
		cfg.SetDefaults()
		err = nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if needBroker {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger = logging.Setup(level)
	return nil
}
