package spectral

import (
	"fmt"
	"math"

	"github.com/groundwatch/groundwatch-cli/internal/raster"
)

// Definition is a normalized-difference index: (A - B) / (A + B).
type Definition struct {
	Name string
	A    raster.Band
	B    raster.Band
}

// Definitions are the indices computed for every epoch, in output order.
// NDWI is the Gao variant (NIR/SWIR1), the one the difference pipeline is
// calibrated for; it reacts to water and vegetation moisture.
var Definitions = []Definition{
	{Name: "ndvi", A: raster.BandNIR, B: raster.BandRed},
	{Name: "ndbi", A: raster.BandSWIR1, B: raster.BandNIR},
	{Name: "ndwi", A: raster.BandNIR, B: raster.BandSWIR1},
}

// IndexRaster is one spectral index over one epoch, on the source stack grid.
type IndexRaster struct {
	*raster.Raster
	Name  string
	Tile  string
	Epoch string
}

// Compute evaluates a normalized-difference index over a stack. A pixel is
// marked invalid when either input is NaN/Inf or when the denominator
// magnitude falls below epsilon; no divide-by-zero value ever reaches the
// output. Valid values always land in [-1, 1].
func Compute(s *raster.Stack, def Definition, epsilon float64) (*IndexRaster, error) {
	a, ok := s.BandData(def.A)
	if !ok {
		return nil, fmt.Errorf("stack for tile %s (%s epoch) has no band %s", s.Tile, s.Epoch, def.A)
	}
	b, ok := s.BandData(def.B)
	if !ok {
		return nil, fmt.Errorf("stack for tile %s (%s epoch) has no band %s", s.Tile, s.Epoch, def.B)
	}

	out := raster.NewRaster(s.Grid)
	for i := range a {
		av, bv := a[i], b[i]
		if math.IsNaN(av) || math.IsNaN(bv) || math.IsInf(av, 0) || math.IsInf(bv, 0) {
			continue
		}
		den := av + bv
		if math.Abs(den) < epsilon {
			continue
		}
		v := (av - bv) / den
		if v < -1 || v > 1 {
			// Only possible with negative reflectances; treat as bad input
			// rather than clipping.
			continue
		}
		out.Data[i] = v
		out.Valid[i] = true
	}

	return &IndexRaster{
		Raster: out,
		Name:   def.Name,
		Tile:   s.Tile,
		Epoch:  s.Epoch,
	}, nil
}
