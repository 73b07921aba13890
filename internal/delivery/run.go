package delivery

import (
	"fmt"
	"path/filepath"

	"github.com/groundwatch/groundwatch-cli/internal/change"
	"github.com/groundwatch/groundwatch-cli/internal/patch"
	"github.com/groundwatch/groundwatch-cli/internal/properties"
	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/groundwatch/groundwatch-cli/internal/spectral"
	"github.com/groundwatch/groundwatch-cli/internal/utils"
	"github.com/groundwatch/groundwatch-cli/output"
	"golang.org/x/sync/errgroup"
)

type IndexSummary struct {
	Index     string
	Patches   int
	Defined   int
	Anomalies int
}

type TileSummary struct {
	Tile        string
	GeoJSONPath string
	CSVPath     string
	Indexes     []IndexSummary
}

type Summary struct {
	Tiles []TileSummary
}

// tileResult holds a fully computed tile before anything is serialized. A
// run either computes every tile or aborts without writing output.
type tileResult struct {
	tile    string
	records []patch.Record
	names   []string
	diffs   []*change.DifferenceRaster
	summary TileSummary
}

// Run executes the change-detection pipeline: stack both epochs per tile,
// compute the spectral indices, difference and reproject them, aggregate
// patch statistics, flag anomalies and serialize the patch collections.
func Run(cfg properties.Run) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	preTiles, err := raster.DiscoverTiles(cfg.PreDir)
	if err != nil {
		return nil, err
	}
	postTiles, err := raster.DiscoverTiles(cfg.PostDir)
	if err != nil {
		return nil, err
	}

	common := utils.Intersect(preTiles, postTiles)
	if len(common) == 0 {
		return nil, fmt.Errorf("no common tiles between epochs: pre has %v, post has %v",
			utils.SortedNames(preTiles), utils.SortedNames(postTiles))
	}

	// Compute everything first; serialization only starts once every tile
	// succeeded, so a failing tile never leaves partial output behind.
	results := make([]*tileResult, 0, len(common))
	for _, tile := range common {
		result, err := processTile(tile, preTiles[tile], postTiles[tile], cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	summary := &Summary{}
	for _, result := range results {
		if cfg.WriteDiffRasters {
			for _, d := range result.diffs {
				path := filepath.Join(cfg.OutputDir, "indices", d.Name, fmt.Sprintf("%s_diff.tif", d.Tile))
				if err := raster.WriteGTiff(d.Raster, path); err != nil {
					return nil, err
				}
			}
		}

		geojsonPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("patch_stats_%s.geojson", result.tile))
		csvPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("patch_stats_%s.csv", result.tile))
		if err := output.CreatePatchGeoJSON(result.records, result.names, geojsonPath); err != nil {
			return nil, err
		}
		if err := output.CreatePatchCSV(result.records, result.names, csvPath); err != nil {
			return nil, err
		}

		result.summary.GeoJSONPath = geojsonPath
		result.summary.CSVPath = csvPath
		summary.Tiles = append(summary.Tiles, result.summary)
	}
	return summary, nil
}

func processTile(tile string, preFiles, postFiles map[raster.Band]string, cfg properties.Run) (*tileResult, error) {
	var preStack, postStack *raster.Stack
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		preStack, err = raster.LoadStack(tile, "pre", preFiles, cfg)
		return err
	})
	eg.Go(func() error {
		var err error
		postStack, err = raster.LoadStack(tile, "post", postFiles, cfg)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	diffs := make([]*change.DifferenceRaster, len(spectral.Definitions))
	var ig errgroup.Group
	for i, def := range spectral.Definitions {
		i, def := i, def
		ig.Go(func() error {
			preIdx, err := spectral.Compute(preStack, def, cfg.Epsilon)
			if err != nil {
				return err
			}
			postIdx, err := spectral.Compute(postStack, def, cfg.Epsilon)
			if err != nil {
				return err
			}
			diff, err := change.Difference(preIdx, postIdx)
			if err != nil {
				return err
			}
			var warped *change.DifferenceRaster
			var warpErr error
			utils.ExecuteWithMutex(func() {
				warped, warpErr = change.Reproject(diff, cfg)
			})
			if warpErr != nil {
				return warpErr
			}
			diffs[i] = warped
			return nil
		})
	}
	if err := ig.Wait(); err != nil {
		return nil, err
	}

	grid := diffs[0].Grid
	for _, d := range diffs[1:] {
		if !d.Grid.Equal(grid) {
			return nil, &change.AlignmentError{Tile: tile, Index: d.Name, Reason: "reprojected grid differs between indices"}
		}
	}

	windows := patch.Partition(grid, cfg.PatchSize)
	stats := make(map[string][]patch.Statistic, len(diffs))
	result := &tileResult{tile: tile, diffs: diffs, summary: TileSummary{Tile: tile}}
	for _, d := range diffs {
		s := patch.Aggregate(d.Raster, windows, cfg.Workers, fmt.Sprintf("%s %s", tile, d.Name))
		flagged := patch.FlagAnomalies(s, cfg.AnomalyThreshold)
		stats[d.Name] = s

		defined := 0
		for _, stat := range s {
			if stat.Defined {
				defined++
			}
		}
		result.summary.Indexes = append(result.summary.Indexes, IndexSummary{
			Index:     d.Name,
			Patches:   len(s),
			Defined:   defined,
			Anomalies: flagged,
		})
	}

	result.records = patch.Assemble(tile, windows, grid, stats)
	result.names = utils.SortedNames(stats)
	return result, nil
}
