package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/groundwatch/groundwatch-cli/internal/patch"
)

// PatchRow is the flat tabular form of one (patch, index) pair. MeanDiff and
// StdDiff are pointers so undefined statistics serialize as empty cells
// instead of zeros.
type PatchRow struct {
	Tile            string   `csv:"tile"`
	Row             int      `csv:"row"`
	Col             int      `csv:"col"`
	Index           string   `csv:"index"`
	MeanDiff        *float64 `csv:"mean_diff"`
	StdDiff         *float64 `csv:"std_diff"`
	ValidPixelCount int      `csv:"valid_pixel_count"`
	AnomalyFlag     bool     `csv:"anomaly_flag"`
	MinLon          float64  `csv:"min_lon"`
	MinLat          float64  `csv:"min_lat"`
	MaxLon          float64  `csv:"max_lon"`
	MaxLat          float64  `csv:"max_lat"`
}

// FlattenRecords converts the patch collection to long-format rows carrying
// the same fields as the GeoJSON attributes, ordered by patch then by index
// name.
func FlattenRecords(records []patch.Record, indexNames []string) ([]PatchRow, error) {
	rows := make([]PatchRow, 0, len(records)*len(indexNames))
	for _, rec := range records {
		bound := rec.Geometry.Bound()
		for _, name := range indexNames {
			s, ok := rec.Stats[name]
			if !ok {
				return nil, fmt.Errorf("patch (%d,%d) of tile %s has no statistics for index %s", rec.Row, rec.Col, rec.Tile, name)
			}
			row := PatchRow{
				Tile:            rec.Tile,
				Row:             rec.Row,
				Col:             rec.Col,
				Index:           name,
				ValidPixelCount: s.Count,
				AnomalyFlag:     s.Anomaly,
				MinLon:          bound.Min.X(),
				MinLat:          bound.Min.Y(),
				MaxLon:          bound.Max.X(),
				MaxLat:          bound.Max.Y(),
			}
			if s.Defined {
				mean, std := s.Mean, s.Std
				row.MeanDiff = &mean
				row.StdDiff = &std
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// CreatePatchCSV writes the flat tabular record next to the GeoJSON artifact.
func CreatePatchCSV(records []patch.Record, indexNames []string, outputPath string) error {
	rows, err := FlattenRecords(records, indexNames)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write CSV: %v", err)
	}
	return nil
}
