package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/shady-map-service/internal/adapter/boundary"
	"github.com/couchcryptid/shady-map-service/internal/adapter/feed"
	"github.com/couchcryptid/shady-map-service/internal/config"
	"github.com/couchcryptid/shady-map-service/internal/domain"
	"github.com/couchcryptid/shady-map-service/internal/observability"
	"github.com/couchcryptid/shady-map-service/internal/pipeline"
	"github.com/couchcryptid/shady-map-service/internal/sites"
)

var (
	configPath string
	envFile    string
	cfg        *config.Config
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "shadymap",
	Short:        "Serve and inspect the Toronto shady spots map",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// A missing .env is normal outside local development.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = observability.NewLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before configuration")
}

// newPipeline wires the feed, the optional boundary and the site catalog.
// feedLocation overrides FEED_URL when set.
func newPipeline(feedLocation string, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	catalog, err := sites.Load(cfg.SitesFile)
	if err != nil {
		return nil, err
	}
	if feedLocation == "" {
		feedLocation = cfg.FeedURL
	}

	var outline pipeline.BoundarySource
	if cfg.BoundaryURL != "" {
		outline = boundary.NewLoader(cfg.BoundaryURL, cfg.FeedTimeout, logger)
	}

	opts := pipeline.Options{
		Layers:          domain.DefaultLayerSet(cfg.HeatOverlayURL),
		Tree:            domain.TreeOptions{ArtworkFirst: cfg.ArtworkFirst},
		RefreshInterval: cfg.FeedRefreshInterval,
	}
	return pipeline.New(feed.NewClient(feedLocation, cfg.FeedTimeout, logger), outline, catalog, opts, logger, metrics), nil
}
