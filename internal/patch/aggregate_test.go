package patch

import (
	"math"
	"testing"

	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMeanStdCount(t *testing.T) {
	g := testGrid(4, 4)
	r := raster.NewRaster(g)
	// Two values, half the pixels each: mean 0.3, population std 0.1.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				r.Set(x, y, 0.2)
			} else {
				r.Set(x, y, 0.4)
			}
		}
	}

	stats := Aggregate(r, Partition(g, 4), 2, "test")
	require.Len(t, stats, 1)
	s := stats[0]
	require.True(t, s.Defined)
	assert.Equal(t, 16, s.Count)
	assert.InDelta(t, 0.3, s.Mean, 1e-12)
	assert.InDelta(t, 0.1, s.Std, 1e-12)
}

func TestAggregateSkipsInvalidPixels(t *testing.T) {
	g := testGrid(2, 2)
	r := raster.NewRaster(g)
	r.Set(0, 0, 1.0)
	r.Set(1, 0, 3.0)
	// (0,1) and (1,1) stay invalid

	stats := Aggregate(r, Partition(g, 2), 1, "test")
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 2.0, stats[0].Mean, 1e-12)
}

func TestAggregateEmptyPatchIsUndefined(t *testing.T) {
	g := testGrid(4, 2)
	r := raster.NewRaster(g)
	// Left patch has data, right patch is all invalid.
	r.Set(0, 0, 0.5)
	r.Set(1, 1, 0.5)

	stats := Aggregate(r, Partition(g, 2), 2, "test")
	require.Len(t, stats, 2)

	require.True(t, stats[0].Defined)
	require.False(t, stats[1].Defined)
	assert.True(t, math.IsNaN(stats[1].Mean), "undefined mean must not look like a value")
	assert.True(t, math.IsNaN(stats[1].Std))
	assert.Equal(t, 0, stats[1].Count)
	assert.False(t, stats[1].Anomaly)
}

func TestAggregateOrderIndependentOfWorkers(t *testing.T) {
	g := testGrid(512, 512)
	r := raster.NewRaster(g)
	windows := Partition(g, 128)
	// Give every patch a distinct constant value: its row-major position.
	for i, w := range windows {
		for y := w.Y; y < w.Y+w.Height; y++ {
			for x := w.X; x < w.X+w.Width; x++ {
				r.Set(x, y, float64(i))
			}
		}
	}

	sequential := Aggregate(r, windows, 1, "test")
	parallel := Aggregate(r, windows, 8, "test")
	require.Equal(t, sequential, parallel)
	for i, s := range parallel {
		assert.InDelta(t, float64(i), s.Mean, 1e-12)
	}
}
