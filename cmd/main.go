package main

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/groundwatch/groundwatch-cli/internal/delivery"
	"github.com/groundwatch/groundwatch-cli/internal/properties"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func printBanner() {
	figure1 := figure.NewFigure("Groundwatch", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	fmt.Println()
}

func newRootCommand() *cobra.Command {
	cfg := properties.DefaultRun()

	cmd := &cobra.Command{
		Use:   "groundwatch",
		Short: "Detect ground change between two satellite acquisitions",
		Long: `Groundwatch compares pre- and post-event Sentinel-2 acquisitions:
it stacks and co-registers the bands of each epoch, computes NDVI, NDBI and
NDWI, differences the indices, aggregates the difference over a regular patch
grid and flags patches whose change exceeds the configured threshold. The
result is a GeoJSON and a CSV patch collection per tile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()
			godal.RegisterAll()

			summary, err := delivery.Run(cfg)
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.PreDir, "pre", "", "directory with pre-event band rasters (required)")
	flags.StringVar(&cfg.PostDir, "post", "", "directory with post-event band rasters (required)")
	flags.StringVar(&cfg.OutputDir, "out", "", "directory for patch statistics artifacts (required)")
	flags.Float64Var(&cfg.AOI.North, "aoi-north", cfg.AOI.North, "AOI northern latitude")
	flags.Float64Var(&cfg.AOI.South, "aoi-south", cfg.AOI.South, "AOI southern latitude")
	flags.Float64Var(&cfg.AOI.East, "aoi-east", cfg.AOI.East, "AOI eastern longitude")
	flags.Float64Var(&cfg.AOI.West, "aoi-west", cfg.AOI.West, "AOI western longitude")
	flags.IntVar(&cfg.PatchSize, "patch-size", cfg.PatchSize, "patch edge length in pixels")
	flags.Float64Var(&cfg.AnomalyThreshold, "threshold", cfg.AnomalyThreshold, "anomaly threshold as a multiple of the global std of patch means")
	flags.StringVar(&cfg.Resampling, "resampling", cfg.Resampling, "resampling method for band alignment and reprojection (bilinear, near, cubic, average)")
	flags.IntVar(&cfg.TargetEPSG, "target-epsg", cfg.TargetEPSG, "EPSG code of the output CRS")
	flags.Float64Var(&cfg.TargetResolution, "target-resolution", cfg.TargetResolution, "output pixel size in target CRS units")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker count for patch aggregation")
	flags.BoolVar(&cfg.WriteDiffRasters, "write-diff-rasters", false, "also write the difference rasters as GeoTIFFs")

	cmd.MarkFlagRequired("pre")
	cmd.MarkFlagRequired("post")
	cmd.MarkFlagRequired("out")

	return cmd
}

func printSummary(summary *delivery.Summary) {
	for _, tile := range summary.Tiles {
		bannercolor.Green("\nTile %s", tile.Tile)
		for _, idx := range tile.Indexes {
			bannercolor.Green("  %s: %d patches, %d with data, %d anomalous", idx.Index, idx.Patches, idx.Defined, idx.Anomalies)
		}
		bannercolor.Green("  GeoJSON: %s", tile.GeoJSONPath)
		bannercolor.Green("  CSV:     %s", tile.CSVPath)
	}
}

func main() {
	godotenv.Load(".env")

	if err := newRootCommand().Execute(); err != nil {
		bannercolor.Red("Error: %s", err.Error())
		os.Exit(1)
	}
}
