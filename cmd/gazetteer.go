package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fotoflow/revgeo/internal/gazetteer"
)

var gazetteerCmd = &cobra.Command{
	Use:   "gazetteer",
	Short: "Manage the named-place dataset",
	Long:  "Import and inspect the flat gazetteer used for nearest-place lookups.",
}

var gazetteerImportSource string

var gazetteerImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the gazetteer TSV into sqlite",
	Long:  "Parse a GeoNames-style TSV once and store it in the configured sqlite database for fast startup.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source := gazetteerImportSource
		if source == "" {
			source = cfg.Gazetteer.Path
		}
		dbPath := cfg.Gazetteer.DBPath
		if dbPath == "" {
			dbPath = "places.db"
		}

		n, err := gazetteer.ImportTSV(ctx, dbPath, source)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d places from %s into %s\n", n, source, dbPath)
		return nil
	},
}

func init() {
	gazetteerImportCmd.Flags().StringVar(&gazetteerImportSource, "source", "", "TSV source (defaults to gazetteer.path)")
	gazetteerCmd.AddCommand(gazetteerImportCmd)
	rootCmd.AddCommand(gazetteerCmd)
}
