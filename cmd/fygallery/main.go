package main

import (
	"fmt"
	"os"

	"fygallery/internal/config"
	"fygallery/internal/ui"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RunFunc starts the gallery with the final configuration.
type RunFunc func(cfg config.Config, logger *logrus.Logger) error

// NewRootCmd creates the gallery command. Values come from the config file,
// then from any flag given on the command line, then from the catalog
// argument.
func NewRootCmd(run RunFunc) *cobra.Command {
	var configPath, writeConfig string
	flagCfg := config.Default()

	rootCmd := &cobra.Command{
		Use:           "fygallery [catalog]",
		Short:         "fygallery - a filterable photo gallery",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("catalog") {
				cfg.Catalog = flagCfg.Catalog
			}
			if flags.Changed("margin") {
				cfg.ProximityMargin = flagCfg.ProximityMargin
			}
			if flags.Changed("rescan-delay") {
				cfg.RescanDelay = flagCfg.RescanDelay
			}
			if flags.Changed("swipe-threshold") {
				cfg.SwipeThreshold = flagCfg.SwipeThreshold
			}
			if flags.Changed("thumbnail-size") {
				cfg.ThumbnailSize = flagCfg.ThumbnailSize
			}
			if flags.Changed("slideshow-interval") {
				cfg.SlideshowInterval = flagCfg.SlideshowInterval
			}
			if flags.Changed("fetch-retries") {
				cfg.FetchRetries = flagCfg.FetchRetries
			}
			if flags.Changed("fetch-timeout") {
				cfg.FetchTimeout = flagCfg.FetchTimeout
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = flagCfg.LogLevel
			}
			if flags.Changed("strict-categories") {
				cfg.StrictCategories = flagCfg.StrictCategories
			}
			if len(args) == 1 {
				cfg.Catalog = args[0]
			}

			fixes := cfg.Normalize()
			logger, err := config.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				logger, _ = config.NewLogger("info", cmd.ErrOrStderr())
				logger.WithError(err).Warnf("invalid log_level %q, using info", cfg.LogLevel)
				cfg.LogLevel = "info"
			}
			for _, fix := range fixes {
				logger.Warn(fix)
			}

			if writeConfig != "" {
				if err := cfg.Write(writeConfig); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
				cmd.Printf("Wrote configuration to %s\n", writeConfig)
				return nil
			}

			logger.WithField("catalog", cfg.Catalog).Info("starting fygallery")
			return run(cfg, logger)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "fygallery.yaml", "YAML configuration file (optional)")
	f.StringVar(&writeConfig, "write-config", "", "write the effective configuration to this file and exit")
	f.StringVar(&flagCfg.Catalog, "catalog", flagCfg.Catalog, "catalog file or URL")
	f.Float32Var(&flagCfg.ProximityMargin, "margin", flagCfg.ProximityMargin, "distance from the viewport at which images start loading")
	f.DurationVar(&flagCfg.RescanDelay, "rescan-delay", flagCfg.RescanDelay, "delay before re-scanning after a filter change")
	f.Float32Var(&flagCfg.SwipeThreshold, "swipe-threshold", flagCfg.SwipeThreshold, "horizontal distance that counts as a swipe")
	f.IntVar(&flagCfg.ThumbnailSize, "thumbnail-size", flagCfg.ThumbnailSize, "thumbnail edge length")
	f.DurationVar(&flagCfg.SlideshowInterval, "slideshow-interval", flagCfg.SlideshowInterval, "slideshow auto-advance interval")
	f.IntVar(&flagCfg.FetchRetries, "fetch-retries", flagCfg.FetchRetries, "retries for a failed image fetch (0 disables)")
	f.DurationVar(&flagCfg.FetchTimeout, "fetch-timeout", flagCfg.FetchTimeout, "timeout for one image fetch")
	f.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "log level (debug, info, warn, error)")
	f.BoolVar(&flagCfg.StrictCategories, "strict-categories", flagCfg.StrictCategories, "ignore filter buttons whose category no photo has")

	return rootCmd
}

func main() {
	rootCmd := NewRootCmd(func(cfg config.Config, logger *logrus.Logger) error {
		ui.CreateApplication(cfg, logger)
		return nil
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fygallery:", err)
		os.Exit(1)
	}
}
