package change

import (
	"fmt"

	"github.com/groundwatch/groundwatch-cli/internal/properties"
	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/groundwatch/groundwatch-cli/internal/spectral"
)

// AlignmentError aborts a tile whose pre and post epochs do not share a pixel
// grid.
type AlignmentError struct {
	Tile   string
	Index  string
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("pre and post epochs of tile %s cannot be aligned for %s: %s", e.Tile, e.Index, e.Reason)
}

// DifferenceRaster is post minus pre for one index of one tile, defined only
// where both epochs carry valid pixels.
type DifferenceRaster struct {
	*raster.Raster
	Name string
	Tile string
}

// Difference subtracts the pre-event index from the post-event index pixel
// for pixel. Both rasters must already share a grid; the stack builder
// guarantees that per epoch, so a mismatch here means the epochs themselves
// disagree and the tile is aborted.
func Difference(pre, post *spectral.IndexRaster) (*DifferenceRaster, error) {
	if pre.Name != post.Name {
		return nil, &AlignmentError{Tile: pre.Tile, Index: pre.Name, Reason: fmt.Sprintf("index mismatch: %s vs %s", pre.Name, post.Name)}
	}
	if pre.Tile != post.Tile {
		return nil, &AlignmentError{Tile: pre.Tile, Index: pre.Name, Reason: fmt.Sprintf("tile mismatch: %s vs %s", pre.Tile, post.Tile)}
	}
	if !pre.Grid.Equal(post.Grid) {
		return nil, &AlignmentError{Tile: pre.Tile, Index: pre.Name, Reason: "pixel grids differ between epochs"}
	}

	out := raster.NewRaster(pre.Grid)
	for i := range out.Data {
		if pre.Valid[i] && post.Valid[i] {
			out.Data[i] = post.Data[i] - pre.Data[i]
			out.Valid[i] = true
		}
	}
	return &DifferenceRaster{Raster: out, Name: pre.Name, Tile: pre.Tile}, nil
}

// Reproject warps a difference raster to the target CRS at the configured
// resolution. The resampling method comes from the configuration so repeated
// runs resample identically.
func Reproject(d *DifferenceRaster, cfg properties.Run) (*DifferenceRaster, error) {
	src, err := raster.ToMemDataset(d.Raster)
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s difference of tile %s for reprojection: %v", d.Name, d.Tile, err)
	}
	defer src.Close()

	switches := []string{
		"-of", "MEM",
		"-t_srs", fmt.Sprintf("EPSG:%d", cfg.TargetEPSG),
		"-tr", fmt.Sprintf("%g", cfg.TargetResolution), fmt.Sprintf("%g", cfg.TargetResolution),
		"-r", cfg.Resampling,
		"-srcnodata", "nan",
		"-dstnodata", "nan",
	}
	warped, err := src.Warp("", switches)
	if err != nil {
		return nil, &AlignmentError{Tile: d.Tile, Index: d.Name, Reason: fmt.Sprintf("reprojection to EPSG:%d failed: %v", cfg.TargetEPSG, err)}
	}
	defer warped.Close()

	out, err := raster.FromDataset(warped)
	if err != nil {
		return nil, fmt.Errorf("failed to read reprojected %s difference of tile %s: %v", d.Name, d.Tile, err)
	}
	return &DifferenceRaster{Raster: out, Name: d.Name, Tile: d.Tile}, nil
}
