package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groundwatch/groundwatch-cli/internal/patch"
	"github.com/paulmach/orb/geojson"
)

// CreatePatchGeoJSON writes the patch collection as a GeoJSON
// FeatureCollection: one feature per patch, polygon in the target CRS,
// per-index attributes prefixed with the index name. Undefined statistics are
// serialized as null, never as zero. Output is byte-stable for identical
// input: patches arrive in row-major order and index names are iterated in
// the given sorted order.
func CreatePatchGeoJSON(records []patch.Record, indexNames []string, outputPath string) error {
	fc := geojson.NewFeatureCollection()

	for _, rec := range records {
		feature := geojson.NewFeature(rec.Geometry)
		feature.Properties["tile"] = rec.Tile
		feature.Properties["row"] = rec.Row
		feature.Properties["col"] = rec.Col
		for _, name := range indexNames {
			s, ok := rec.Stats[name]
			if !ok {
				return fmt.Errorf("patch (%d,%d) of tile %s has no statistics for index %s", rec.Row, rec.Col, rec.Tile, name)
			}
			if s.Defined {
				feature.Properties[name+"_mean_diff"] = s.Mean
				feature.Properties[name+"_std_diff"] = s.Std
			} else {
				feature.Properties[name+"_mean_diff"] = nil
				feature.Properties[name+"_std_diff"] = nil
			}
			feature.Properties[name+"_valid_pixel_count"] = s.Count
			feature.Properties[name+"_anomaly_flag"] = s.Anomaly
		}
		fc.Append(feature)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create GeoJSON file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %v", err)
	}
	return nil
}
