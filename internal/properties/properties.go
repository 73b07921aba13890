package properties

import (
	"fmt"
	"os"
	"runtime"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// BoundingBox is the area of interest in geographic (lon/lat) coordinates.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

func (b BoundingBox) Validate() error {
	if b.North <= b.South {
		return fmt.Errorf("invalid AOI: north (%f) must be greater than south (%f)", b.North, b.South)
	}
	if b.East <= b.West {
		return fmt.Errorf("invalid AOI: east (%f) must be greater than west (%f)", b.East, b.West)
	}
	return nil
}

// Run carries every externally supplied parameter of one engine run. Nothing
// in the pipeline reads package-level state, so two runs with different
// configurations never interfere.
type Run struct {
	PreDir    string
	PostDir   string
	OutputDir string

	AOI BoundingBox

	PatchSize        int
	AnomalyThreshold float64
	Resampling       string
	TargetEPSG       int
	TargetResolution float64
	Epsilon          float64
	Workers          int

	WriteDiffRasters bool
}

func DefaultRun() Run {
	return Run{
		AOI: BoundingBox{
			North: 27.5,
			South: 17.05,
			East:  98.4,
			West:  95.5,
		},
		PatchSize:        128,
		AnomalyThreshold: 2.0,
		Resampling:       "bilinear",
		TargetEPSG:       4326,
		TargetResolution: 0.0001,
		Epsilon:          1e-12,
		Workers:          runtime.NumCPU(),
	}
}

func (r Run) Validate() error {
	if r.PreDir == "" || r.PostDir == "" {
		return fmt.Errorf("both pre and post event directories are required")
	}
	if r.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if r.PatchSize <= 0 {
		return fmt.Errorf("patch size must be positive, got %d", r.PatchSize)
	}
	if r.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be positive, got %f", r.AnomalyThreshold)
	}
	switch r.Resampling {
	case "bilinear", "near", "cubic", "average":
	default:
		return fmt.Errorf("unsupported resampling method: %s", r.Resampling)
	}
	if r.TargetEPSG <= 0 {
		return fmt.Errorf("target EPSG must be positive, got %d", r.TargetEPSG)
	}
	if r.TargetResolution <= 0 {
		return fmt.Errorf("target resolution must be positive, got %f", r.TargetResolution)
	}
	if r.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", r.Workers)
	}
	return r.AOI.Validate()
}
