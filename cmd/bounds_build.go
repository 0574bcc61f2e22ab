package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fotoflow/revgeo/internal/boundary"
	"github.com/fotoflow/revgeo/internal/geometry"
)

var (
	buildSource   string
	buildManifest string
	buildOut      string
)

var boundsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Convert country polygons into a boundary file",
	Long:  "Read country features from an ESRI shapefile or GeoJSON FeatureCollection and write a .geobounds file with empty caches.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := boundary.LoadManifest(buildManifest)
		if err != nil {
			return err
		}

		var countries []*geometry.CountryBoundary
		switch strings.ToLower(filepath.Ext(buildSource)) {
		case ".shp":
			countries, err = boundary.BuildFromShapefile(buildSource, m)
		case ".json", ".geojson":
			countries, err = boundary.BuildFromGeoJSON(buildSource, m)
		default:
			return eris.Errorf("bounds build: unsupported source %s (want .shp or .geojson)", buildSource)
		}
		if err != nil {
			return err
		}

		if err := boundary.WriteFile(buildOut, countries, nil, nil); err != nil {
			return err
		}

		var vertices int
		for _, c := range countries {
			vertices += c.VertexCount()
		}
		fmt.Printf("wrote %s: %d countries, %d vertices\n", buildOut, len(countries), vertices)
		return nil
	},
}

func init() {
	boundsBuildCmd.Flags().StringVar(&buildSource, "source", "", "country polygon source (.shp or .geojson)")
	boundsBuildCmd.Flags().StringVar(&buildManifest, "manifest", "", "YAML manifest naming the code/name attribute fields")
	boundsBuildCmd.Flags().StringVar(&buildOut, "out", "boundaries.geobounds", "output boundary file")
	_ = boundsBuildCmd.MarkFlagRequired("source")
	_ = boundsBuildCmd.MarkFlagRequired("manifest")
	boundsCmd.AddCommand(boundsBuildCmd)
}
