package raster

import "math"

// Band identifies a Sentinel-2 band by its product name.
type Band string

const (
	BandBlue  Band = "B02"
	BandGreen Band = "B03"
	BandRed   Band = "B04"
	BandNIR   Band = "B08"
	BandSWIR1 Band = "B11"
	BandSWIR2 Band = "B12"
)

// RequiredBands is the band set every epoch must provide, in stack order.
// B02-B08 are native 10 m, B11 and B12 are native 20 m and get resampled onto
// the 10 m grid by the loader.
var RequiredBands = []Band{BandBlue, BandGreen, BandRed, BandNIR, BandSWIR1, BandSWIR2}

// CoarseBands are the bands that need resampling before stacking.
var CoarseBands = map[Band]bool{BandSWIR1: true, BandSWIR2: true}

// Stack is one acquisition epoch: every required band co-registered on the
// same pixel grid. Pixels without data (outside the clipped footprint) hold
// NaN.
type Stack struct {
	Grid
	Tile  string
	Epoch string
	bands map[Band][]float64
}

// BuildStack assembles per-band rasters into a co-registered stack. The
// loader has already resampled coarse bands, so any remaining grid deviation
// is fatal.
func BuildStack(tile, epoch string, bands map[Band]*Raster) (*Stack, error) {
	var ref *Raster
	for _, band := range RequiredBands {
		r, ok := bands[band]
		if !ok {
			return nil, &MissingBandError{Band: band, Tile: tile, Epoch: epoch}
		}
		if ref == nil {
			ref = r
		}
	}

	if ref.Rotated() {
		return nil, &GridMismatchError{Band: RequiredBands[0], Tile: tile, Epoch: epoch, Reason: "rotated geotransform"}
	}

	s := &Stack{
		Grid:  ref.Grid,
		Tile:  tile,
		Epoch: epoch,
		bands: make(map[Band][]float64, len(RequiredBands)),
	}
	for _, band := range RequiredBands {
		r := bands[band]
		if !r.Grid.Equal(ref.Grid) {
			return nil, &GridMismatchError{Band: band, Tile: tile, Epoch: epoch, Reason: "pixel grid differs from reference band"}
		}
		data := make([]float64, len(r.Data))
		for i := range r.Data {
			if r.Valid[i] {
				data[i] = r.Data[i]
			} else {
				data[i] = math.NaN()
			}
		}
		s.bands[band] = data
	}
	return s, nil
}

// BandData returns the pixel values of one band in row-major order.
func (s *Stack) BandData(band Band) ([]float64, bool) {
	data, ok := s.bands[band]
	return data, ok
}
