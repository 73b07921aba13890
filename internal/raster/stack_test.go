package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(width, height int) Grid {
	return Grid{
		Width:     width,
		Height:    height,
		Transform: [6]float64{95.5, 0.0001, 0, 27.5, 0, -0.0001},
		CRS:       "WGS 84",
	}
}

func filledRaster(g Grid, value float64) *Raster {
	r := NewRaster(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			r.Set(x, y, value)
		}
	}
	return r
}

func fullBandSet(g Grid) map[Band]*Raster {
	bands := make(map[Band]*Raster, len(RequiredBands))
	for i, band := range RequiredBands {
		bands[band] = filledRaster(g, float64(i+1))
	}
	return bands
}

func TestBuildStack(t *testing.T) {
	g := testGrid(4, 3)
	stack, err := BuildStack("T46QGL", "pre", fullBandSet(g))
	require.NoError(t, err)

	assert.Equal(t, "T46QGL", stack.Tile)
	assert.Equal(t, "pre", stack.Epoch)
	assert.Equal(t, g, stack.Grid)

	nir, ok := stack.BandData(BandNIR)
	require.True(t, ok)
	assert.Len(t, nir, g.Pixels())
	assert.Equal(t, 4.0, nir[0])
}

func TestBuildStackMissingBand(t *testing.T) {
	g := testGrid(4, 3)
	bands := fullBandSet(g)
	delete(bands, BandSWIR2)

	_, err := BuildStack("T46QGL", "post", bands)
	var missing *MissingBandError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, BandSWIR2, missing.Band)
	assert.Equal(t, "post", missing.Epoch)
}

func TestBuildStackGridMismatch(t *testing.T) {
	bands := fullBandSet(testGrid(4, 3))
	bands[BandSWIR1] = filledRaster(testGrid(8, 6), 5)

	_, err := BuildStack("T46QGL", "pre", bands)
	var mismatch *GridMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, BandSWIR1, mismatch.Band)
}

func TestBuildStackRotatedGrid(t *testing.T) {
	g := testGrid(4, 3)
	g.Transform[2] = 0.5
	_, err := BuildStack("T46QGL", "pre", fullBandSet(g))

	var mismatch *GridMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestBuildStackKeepsInvalidPixelsAsNaN(t *testing.T) {
	g := testGrid(2, 2)
	bands := fullBandSet(g)
	bands[BandRed].SetInvalid(1, 1)

	stack, err := BuildStack("T46QGL", "pre", bands)
	require.NoError(t, err)

	red, _ := stack.BandData(BandRed)
	assert.True(t, math.IsNaN(red[3]))
	assert.False(t, math.IsNaN(red[0]))
}

func TestGridEqual(t *testing.T) {
	a := testGrid(4, 3)
	assert.True(t, a.Equal(testGrid(4, 3)))

	b := testGrid(4, 3)
	b.Transform[0] += 0.01
	assert.False(t, a.Equal(b))

	c := testGrid(4, 3)
	c.CRS = "other"
	assert.False(t, a.Equal(c))
}

func TestGridBounds(t *testing.T) {
	g := testGrid(100, 200)
	minX, minY, maxX, maxY := g.Bounds()

	assert.InDelta(t, 95.5, minX, 1e-12)
	assert.InDelta(t, 95.5+0.0001*100, maxX, 1e-12)
	assert.InDelta(t, 27.5, maxY, 1e-12)
	assert.InDelta(t, 27.5-0.0001*200, minY, 1e-12)
}
