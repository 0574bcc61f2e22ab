package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fotoflow/revgeo/internal/boundary"
)

var boundsInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a boundary file",
	Long:  "Print the countries, cache sizes, and vertex counts stored in a .geobounds file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		countries, cache, border, err := boundary.ReadFile(args[0])
		if err != nil {
			if eris.Is(err, boundary.ErrBadFormat) {
				return eris.Wrap(err, "bounds inspect: not a boundary file, regenerate with bounds build")
			}
			return err
		}

		fmt.Printf("%s\n", args[0])
		fmt.Printf("countries:     %d\n", len(countries))
		fmt.Printf("cached cells:  %d\n", len(cache))
		fmt.Printf("border cells:  %d\n", len(border))
		fmt.Println()
		for _, c := range countries {
			bb := c.BBox()
			fmt.Printf("%-3s %-6s %-32s polygons=%-4d vertices=%-7d bbox=[%.2f %.2f %.2f %.2f]\n",
				c.Code, c.Alpha3, c.Name, len(c.Polygons), c.VertexCount(),
				bb.MinLat, bb.MinLon, bb.MaxLat, bb.MaxLon)
		}
		return nil
	},
}

func init() { boundsCmd.AddCommand(boundsInspectCmd) }
