package main

import "github.com/spf13/cobra"

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Build, inspect, and warm boundary files",
	Long:  "Manage .geobounds files: convert shapefile/GeoJSON country data, inspect contents, and pre-warm the geohash cache.",
}

func init() { rootCmd.AddCommand(boundsCmd) }
