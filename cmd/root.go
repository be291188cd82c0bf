// Package cmd contains the asset-bridge command line interface.
package cmd

import (
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"
	"github.com/yi-nology/asset_bridge/pkg/config"
)

var (
	cfgFile string
	verbose bool
	bypass  bool
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "asset-bridge",
	Short: "Derive images and publish static assets to a CDN origin",
	Long: `asset-bridge resizes and re-encodes images on demand, caches the
derivatives on disk and publishes them to the configured CDN origin.

Example usage:
  asset-bridge serve                               # Start the HTTP API
  asset-bridge image img/photo.png --size 200x200  # Derive and publish one image
  asset-bridge upload css/app.css                  # Publish a static file
  asset-bridge push                                # Publish every selected static file
  asset-bridge url img/logo.png                    # Print the public URL of an asset`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&bypass, "bypass", false, "never publish, serve local URLs")
}

// initConfig loads the configuration and applies global flags.
func initConfig() error {
	if verbose {
		hlog.SetLevel(hlog.LevelDebug)
	} else {
		hlog.SetLevel(hlog.LevelInfo)
	}

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if bypass {
		loaded.CDN.Bypass = true
	}
	cfg = loaded
	return nil
}
