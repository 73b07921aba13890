package change

import (
	"testing"

	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/groundwatch/groundwatch-cli/internal/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(width, height int) raster.Grid {
	return raster.Grid{
		Width:     width,
		Height:    height,
		Transform: [6]float64{95.5, 0.0001, 0, 27.5, 0, -0.0001},
		CRS:       "WGS 84",
	}
}

func indexRaster(g raster.Grid, name, tile, epoch string, fill func(x, y int) (float64, bool)) *spectral.IndexRaster {
	r := raster.NewRaster(g)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if v, ok := fill(x, y); ok {
				r.Set(x, y, v)
			}
		}
	}
	return &spectral.IndexRaster{Raster: r, Name: name, Tile: tile, Epoch: epoch}
}

func TestDifferenceSubtractsPreFromPost(t *testing.T) {
	g := testGrid(3, 2)
	pre := indexRaster(g, "ndvi", "T46QGL", "pre", func(x, y int) (float64, bool) { return 0.2, true })
	post := indexRaster(g, "ndvi", "T46QGL", "post", func(x, y int) (float64, bool) { return 0.7, true })

	diff, err := Difference(pre, post)
	require.NoError(t, err)
	assert.Equal(t, "ndvi", diff.Name)
	assert.Equal(t, "T46QGL", diff.Tile)
	for i, v := range diff.Data {
		require.True(t, diff.Valid[i])
		assert.InDelta(t, 0.5, v, 1e-12)
	}
}

func TestDifferenceOnlyDefinedWhereBothValid(t *testing.T) {
	g := testGrid(2, 1)
	pre := indexRaster(g, "ndwi", "T46QGL", "pre", func(x, y int) (float64, bool) {
		return 0.1, x == 0 // pixel 1 invalid pre-event
	})
	post := indexRaster(g, "ndwi", "T46QGL", "post", func(x, y int) (float64, bool) {
		return 0.4, true
	})

	diff, err := Difference(pre, post)
	require.NoError(t, err)
	assert.True(t, diff.Valid[0])
	assert.False(t, diff.Valid[1])
}

func TestDifferenceRejectsGridMismatch(t *testing.T) {
	pre := indexRaster(testGrid(2, 2), "ndbi", "T46QGL", "pre", func(x, y int) (float64, bool) { return 0.1, true })
	post := indexRaster(testGrid(3, 3), "ndbi", "T46QGL", "post", func(x, y int) (float64, bool) { return 0.2, true })

	_, err := Difference(pre, post)
	var alignment *AlignmentError
	require.ErrorAs(t, err, &alignment)
	assert.Equal(t, "T46QGL", alignment.Tile)
}

func TestDifferenceRejectsIndexMismatch(t *testing.T) {
	g := testGrid(2, 2)
	pre := indexRaster(g, "ndvi", "T46QGL", "pre", func(x, y int) (float64, bool) { return 0.1, true })
	post := indexRaster(g, "ndwi", "T46QGL", "post", func(x, y int) (float64, bool) { return 0.2, true })

	_, err := Difference(pre, post)
	var alignment *AlignmentError
	require.ErrorAs(t, err, &alignment)
}
