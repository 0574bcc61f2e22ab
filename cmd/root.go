package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fotoflow/revgeo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "revgeo",
	Short: "Boundary-aware reverse geocoding for the photo pipeline",
	Long:  "Resolves GPS coordinates to country/state/city through simplified country polygons with a geohash cache, falling back to nearest-named-place search.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
