package patch

import (
	"testing"

	"github.com/groundwatch/groundwatch-cli/internal/raster"
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

func TestPartition256By128(t *testing.T) {
	windows := Partition(testGrid(256, 256), 128)
	require.Len(t, windows, 4)

	wantOrder := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	for i, want := range wantOrder {
		assert.Equal(t, want[0], windows[i].Row)
		assert.Equal(t, want[1], windows[i].Col)
		assert.Equal(t, 128, windows[i].Width)
		assert.Equal(t, 128, windows[i].Height)
	}
}

func TestPartitionTruncatesEdgePatches(t *testing.T) {
	windows := Partition(testGrid(300, 200), 128)
	require.Len(t, windows, 6) // 2 patch rows x 3 patch cols

	last := windows[len(windows)-1]
	assert.Equal(t, 1, last.Row)
	assert.Equal(t, 2, last.Col)
	assert.Equal(t, 300-2*128, last.Width)
	assert.Equal(t, 200-128, last.Height)
}

func TestPartitionCoversGridExactly(t *testing.T) {
	g := testGrid(300, 200)
	windows := Partition(g, 128)

	covered := make([]int, g.Pixels())
	for _, w := range windows {
		for y := w.Y; y < w.Y+w.Height; y++ {
			for x := w.X; x < w.X+w.Width; x++ {
				covered[y*g.Width+x]++
			}
		}
	}
	for i, n := range covered {
		require.Equal(t, 1, n, "pixel %d covered %d times", i, n)
	}
}

func TestPartitionIsDeterministic(t *testing.T) {
	g := testGrid(515, 257)
	assert.Equal(t, Partition(g, 128), Partition(g, 128))
}

func TestWindowPolygon(t *testing.T) {
	g := testGrid(256, 256)
	w := Partition(g, 128)[3] // row 1, col 1

	poly := w.Polygon(g)
	require.Len(t, poly, 1)
	ring := poly[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4], "ring must be closed")

	bound := poly.Bound()
	assert.InDelta(t, 95.5+0.0001*128, bound.Min.X(), 1e-12)
	assert.InDelta(t, 95.5+0.0001*256, bound.Max.X(), 1e-12)
	assert.InDelta(t, 27.5-0.0001*256, bound.Min.Y(), 1e-12)
	assert.InDelta(t, 27.5-0.0001*128, bound.Max.Y(), 1e-12)
}
