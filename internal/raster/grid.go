package raster

import "math"

const transformTolerance = 1e-9

// Grid describes the pixel geometry shared by every band of a co-registered
// raster: dimensions, the GDAL-style affine geotransform and the CRS as WKT.
type Grid struct {
	Width     int
	Height    int
	Transform [6]float64
	CRS       string
}

func (g Grid) Pixels() int {
	return g.Width * g.Height
}

// Equal reports whether two grids are co-registered pixel for pixel.
func (g Grid) Equal(other Grid) bool {
	if g.Width != other.Width || g.Height != other.Height {
		return false
	}
	if g.CRS != other.CRS {
		return false
	}
	for i := range g.Transform {
		if math.Abs(g.Transform[i]-other.Transform[i]) > transformTolerance {
			return false
		}
	}
	return true
}

// Rotated reports whether the geotransform carries rotation terms. Rotated
// grids cannot be partitioned into axis-aligned patches.
func (g Grid) Rotated() bool {
	return g.Transform[2] != 0 || g.Transform[4] != 0
}

// PixelToGeo converts a pixel corner (col, row) to CRS coordinates.
func (g Grid) PixelToGeo(col, row int) (x, y float64) {
	x = g.Transform[0] + g.Transform[1]*float64(col) + g.Transform[2]*float64(row)
	y = g.Transform[3] + g.Transform[4]*float64(col) + g.Transform[5]*float64(row)
	return x, y
}

// Bounds returns the grid extent as (minX, minY, maxX, maxY) in its CRS.
func (g Grid) Bounds() (minX, minY, maxX, maxY float64) {
	x0, y0 := g.PixelToGeo(0, 0)
	x1, y1 := g.PixelToGeo(g.Width, g.Height)
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}

// Raster is a single 2-D grid of values in row-major order. Valid marks the
// pixels that carry data; excluded pixels hold NaN but statistics only ever
// consult the mask.
type Raster struct {
	Grid
	Data  []float64
	Valid []bool
}

func NewRaster(g Grid) *Raster {
	r := &Raster{
		Grid:  g,
		Data:  make([]float64, g.Pixels()),
		Valid: make([]bool, g.Pixels()),
	}
	for i := range r.Data {
		r.Data[i] = math.NaN()
	}
	return r
}

func (r *Raster) At(col, row int) (float64, bool) {
	i := row*r.Width + col
	return r.Data[i], r.Valid[i]
}

func (r *Raster) Set(col, row int, value float64) {
	i := row*r.Width + col
	r.Data[i] = value
	r.Valid[i] = true
}

func (r *Raster) SetInvalid(col, row int) {
	i := row*r.Width + col
	r.Data[i] = math.NaN()
	r.Valid[i] = false
}

// ValidCount returns the number of pixels carrying data.
func (r *Raster) ValidCount() int {
	n := 0
	for _, v := range r.Valid {
		if v {
			n++
		}
	}
	return n
}
