package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fotoflow/revgeo/internal/geocoder"
)

var (
	lookupLat float64
	lookupLon float64
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Reverse geocode a coordinate",
	Long:  "Resolve a single lat/lon to structured location data using the configured boundary file and gazetteer.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g := geocoder.New(geocoder.Options{
			BoundaryPath:      cfg.Boundary.Path,
			GazetteerPath:     cfg.Gazetteer.Path,
			GazetteerDBPath:   cfg.Gazetteer.DBPath,
			UseBoundaryFilter: cfg.Boundary.UseFiltering,
			CachePrecision:    cfg.Boundary.CachePrecision,
		})
		if err := g.InitializeAsync(ctx); err != nil {
			return err
		}

		loc := g.ReverseGeocode(lookupLat, lookupLon)
		if loc == nil {
			fmt.Println("no result")
			return nil
		}

		fmt.Printf("country:  %s\n", loc.Country)
		fmt.Printf("state:    %s\n", loc.State)
		fmt.Printf("county:   %s\n", loc.County)
		fmt.Printf("city:     %s\n", loc.City)
		fmt.Printf("district: %s\n", loc.District)

		res := g.Index().GetCountry(lookupLat, lookupLon)
		switch {
		case res.Border:
			fmt.Printf("border candidates: %v\n", res.Candidates)
		case res.Ocean:
			fmt.Println("boundary: ocean/unclaimed")
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().Float64Var(&lookupLat, "lat", 0, "latitude in degrees")
	lookupCmd.Flags().Float64Var(&lookupLon, "lon", 0, "longitude in degrees")
	_ = lookupCmd.MarkFlagRequired("lat")
	_ = lookupCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(lookupCmd)
}
