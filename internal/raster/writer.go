package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
)

// WriteGTiff persists a raster as a single-band float32 GeoTIFF with NaN
// nodata, matching the artifact layout of the difference maps.
func WriteGTiff(r *Raster, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, r.Width, r.Height,
		godal.CreationOption("COMPRESS=DEFLATE"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(r.Transform); err != nil {
		return fmt.Errorf("failed to set geotransform on %s: %v", path, err)
	}
	sr, err := godal.NewSpatialRefFromWKT(r.CRS)
	if err != nil {
		return fmt.Errorf("failed to parse CRS for %s: %v", path, err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("failed to set CRS on %s: %v", path, err)
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(math.NaN()); err != nil {
		return fmt.Errorf("failed to set nodata on %s: %v", path, err)
	}

	buf := make([]float32, len(r.Data))
	for i, v := range r.Data {
		if r.Valid[i] {
			buf[i] = float32(v)
		} else {
			buf[i] = float32(math.NaN())
		}
	}
	if err := band.Write(0, 0, buf, r.Width, r.Height); err != nil {
		return fmt.Errorf("failed to write %s: %v", path, err)
	}
	return nil
}
