package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/groundwatch/groundwatch-cli/internal/properties"
	"golang.org/x/sync/errgroup"
)

var (
	tilePattern = regexp.MustCompile(`T\d{2}[A-Z]{3}`)
	bandPattern = regexp.MustCompile(`_(B\d{2})[_.]`)
)

func isRasterFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff", ".jp2":
		return true
	}
	return false
}

// DiscoverTiles walks an epoch directory and groups band files by tile
// identifier (e.g. T46QGL). Files without a recognizable tile or band token
// are ignored.
func DiscoverTiles(dir string) (map[string]map[Band]string, error) {
	tiles := make(map[string]map[Band]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isRasterFile(info.Name()) {
			return nil
		}
		tile := tilePattern.FindString(info.Name())
		bandMatch := bandPattern.FindStringSubmatch(info.Name())
		if tile == "" || bandMatch == nil {
			return nil
		}
		if tiles[tile] == nil {
			tiles[tile] = make(map[Band]string)
		}
		tiles[tile][Band(bandMatch[1])] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %v", dir, err)
	}
	return tiles, nil
}

// LoadStack reads, clips and co-registers every required band of one tile for
// one epoch. Fine bands keep their native 10 m grid; coarse bands are warped
// onto the reference grid with the configured resampling method.
func LoadStack(tile, epoch string, files map[Band]string, cfg properties.Run) (*Stack, error) {
	for _, band := range RequiredBands {
		if _, ok := files[band]; !ok {
			return nil, &MissingBandError{Band: band, Tile: tile, Epoch: epoch}
		}
	}

	refBand := RequiredBands[0]
	ref, err := clipBand(files[refBand], cfg)
	if err != nil {
		return nil, &MissingBandError{Band: refBand, Tile: tile, Epoch: epoch, Cause: err}
	}
	if ref.Rotated() {
		return nil, &GridMismatchError{Band: refBand, Tile: tile, Epoch: epoch, Reason: "rotated geotransform"}
	}

	bands := make(map[Band]*Raster, len(RequiredBands))
	bands[refBand] = ref

	var eg errgroup.Group
	results := make([]*Raster, len(RequiredBands))
	for i, band := range RequiredBands[1:] {
		i, band := i+1, band
		eg.Go(func() error {
			var r *Raster
			var err error
			if CoarseBands[band] {
				r, err = resampleBand(files[band], ref.Grid, cfg)
			} else {
				r, err = clipBand(files[band], cfg)
			}
			if err != nil {
				var mismatch *GridMismatchError
				if asGridMismatch(err, &mismatch) {
					mismatch.Band = band
					mismatch.Tile = tile
					mismatch.Epoch = epoch
					return mismatch
				}
				return &MissingBandError{Band: band, Tile: tile, Epoch: epoch, Cause: err}
			}
			if !r.Grid.Equal(ref.Grid) {
				return &GridMismatchError{Band: band, Tile: tile, Epoch: epoch, Reason: "clipped extent differs from reference band"}
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for i, band := range RequiredBands[1:] {
		bands[band] = results[i+1]
	}

	return BuildStack(tile, epoch, bands)
}

func asGridMismatch(err error, target **GridMismatchError) bool {
	if e, ok := err.(*GridMismatchError); ok {
		*target = e
		return true
	}
	return false
}

func openDataset(path string) (*godal.Dataset, error) {
	return godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
}

// clipBand reads one band file clipped to the AOI, keeping its native grid.
func clipBand(path string, cfg properties.Run) (*Raster, error) {
	ds, err := openDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open band file: %v", err)
	}
	defer ds.Close()

	switches := []string{
		"-of", "MEM",
		"-te", f(cfg.AOI.West), f(cfg.AOI.South), f(cfg.AOI.East), f(cfg.AOI.North),
		"-te_srs", "EPSG:4326",
		"-r", "near",
		"-dstnodata", "nan",
		"-ot", "Float64",
	}
	clipped, err := ds.Warp("", switches)
	if err != nil {
		return nil, fmt.Errorf("failed to clip band to AOI: %v", err)
	}
	defer clipped.Close()

	return FromDataset(clipped)
}

// resampleBand clips a coarse band and warps it pixel-exact onto the target
// grid in a single pass.
func resampleBand(path string, target Grid, cfg properties.Run) (*Raster, error) {
	ds, err := openDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open band file: %v", err)
	}
	defer ds.Close()

	srcSR := ds.SpatialRef()
	defer srcSR.Close()
	targetSR, err := godal.NewSpatialRefFromWKT(target.CRS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target CRS: %v", err)
	}
	defer targetSR.Close()
	if !srcSR.IsSame(targetSR) {
		return nil, &GridMismatchError{Reason: "band CRS differs from reference band CRS"}
	}

	minX, minY, maxX, maxY := target.Bounds()
	switches := []string{
		"-of", "MEM",
		"-te", f(minX), f(minY), f(maxX), f(maxY),
		"-ts", fmt.Sprintf("%d", target.Width), fmt.Sprintf("%d", target.Height),
		"-r", cfg.Resampling,
		"-dstnodata", "nan",
		"-ot", "Float64",
	}
	warped, err := ds.Warp("", switches)
	if err != nil {
		return nil, fmt.Errorf("failed to resample band onto reference grid: %v", err)
	}
	defer warped.Close()

	return FromDataset(warped)
}

// FromDataset copies the first band of a dataset into an in-memory Raster.
// NaN and nodata pixels are marked invalid.
func FromDataset(ds *godal.Dataset) (*Raster, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to read geotransform: %v", err)
	}
	sr := ds.SpatialRef()
	defer sr.Close()
	wkt, err := sr.WKT()
	if err != nil {
		return nil, fmt.Errorf("failed to read CRS: %v", err)
	}

	grid := Grid{
		Width:     ds.Structure().SizeX,
		Height:    ds.Structure().SizeY,
		Transform: gt,
		CRS:       wkt,
	}

	band := ds.Bands()[0]
	data := make([]float64, grid.Pixels())
	if err := band.Read(0, 0, data, grid.Width, grid.Height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %v", err)
	}

	nodata, hasNodata := band.NoData()
	r := &Raster{Grid: grid, Data: data, Valid: make([]bool, grid.Pixels())}
	for i, v := range data {
		if math.IsNaN(v) || (hasNodata && v == nodata) {
			r.Data[i] = math.NaN()
			continue
		}
		r.Valid[i] = true
	}
	return r, nil
}

// ToMemDataset copies a Raster into an in-memory GDAL dataset so it can be
// warped. Invalid pixels become NaN nodata.
func ToMemDataset(r *Raster) (*godal.Dataset, error) {
	ds, err := godal.Create(godal.Memory, "", 1, godal.Float64, r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory dataset: %v", err)
	}
	if err := ds.SetGeoTransform(r.Transform); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to set geotransform: %v", err)
	}
	sr, err := godal.NewSpatialRefFromWKT(r.CRS)
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to parse CRS: %v", err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to set CRS: %v", err)
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(math.NaN()); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to set nodata: %v", err)
	}
	buf := make([]float64, len(r.Data))
	for i, v := range r.Data {
		if r.Valid[i] {
			buf[i] = v
		} else {
			buf[i] = math.NaN()
		}
	}
	if err := band.Write(0, 0, buf, r.Width, r.Height); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to write raster data: %v", err)
	}
	return ds, nil
}

func f(v float64) string {
	return fmt.Sprintf("%f", v)
}
