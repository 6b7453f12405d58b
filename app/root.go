// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/deskhub/deskhub/internal/config"
	"github.com/deskhub/deskhub/internal/logger"
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

var (
	configPath string // Path to the configuration directory

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "deskhub",
		Short: "DeskHub authorization service",
		Long: `DeskHub authorization service manages the custom roles of every company
and decides which member may read, write, delete or manage each dashboard area.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// loadConfig reads the configuration and initialises the logger.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
