package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fotoflow/revgeo/internal/boundary"
)

var (
	warmStep    float64
	warmWorkers int
)

var boundsWarmCmd = &cobra.Command{
	Use:   "warm <file>",
	Short: "Pre-warm the geohash cache of a boundary file",
	Long:  "Probe a lat/lon grid over every country's bounding box so later runs start with a populated cell cache, then rewrite the file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if warmStep <= 0 {
			return eris.Errorf("bounds warm: step %v must be positive", warmStep)
		}

		path := args[0]
		ix := boundary.NewIndex(cfg.Boundary.CachePrecision)
		if err := ix.Initialize(ctx, path); err != nil {
			return err
		}
		if !ix.Initialized() {
			return eris.Errorf("bounds warm: could not load %s", path)
		}

		if err := warmGrid(ctx, ix, warmStep, warmWorkers); err != nil {
			return err
		}

		if err := ix.SaveTo(path); err != nil {
			return err
		}

		stats := ix.CacheStats()
		fmt.Printf("warmed %s: %d country cells, %d border cells\n",
			path, stats.CountryCells, stats.BorderCells)
		return nil
	},
	Args: cobra.ExactArgs(1),
}

// warmGrid walks each country's bounding box in step-degree increments,
// resolving every grid point. Rows are fanned out to a bounded worker pool;
// cancellation stops the sweep between rows.
func warmGrid(ctx context.Context, ix *boundary.Index, step float64, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	var rows int
	for _, country := range ix.Countries() {
		bb := country.BBox()
		if bb.Empty() {
			continue
		}
		for lat := bb.MinLat; lat <= bb.MaxLat; lat += step {
			if err := ctx.Err(); err != nil {
				break
			}
			lat := lat
			rows++
			eg.Go(func() error {
				for lon := bb.MinLon; lon <= bb.MaxLon; lon += step {
					ix.GetCountry(lat, lon)
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	zap.L().Debug("grid warm complete", zap.Int("rows", rows), zap.Float64("step", step))
	return nil
}

func init() {
	boundsWarmCmd.Flags().Float64Var(&warmStep, "step", 0.05, "grid step in degrees")
	boundsWarmCmd.Flags().IntVar(&warmWorkers, "workers", 0, "worker count (0 = NumCPU)")
	boundsCmd.AddCommand(boundsWarmCmd)
}
