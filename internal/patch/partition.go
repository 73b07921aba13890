package patch

import (
	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/paulmach/orb"
)

// Window is one patch of the partition grid: a rectangular pixel block
// addressed by its (Row, Col) position in the patch grid. Trailing-edge
// windows are truncated to the raster bounds, so Width/Height can be smaller
// than the nominal patch size and the reported pixel count shrinks with them.
type Window struct {
	Row    int
	Col    int
	X      int
	Y      int
	Width  int
	Height int
}

func (w Window) Pixels() int {
	return w.Width * w.Height
}

// Polygon returns the window's bounding polygon in the grid's CRS, wound
// counter-clockwise and closed.
func (w Window) Polygon(g raster.Grid) orb.Polygon {
	x0, y0 := g.PixelToGeo(w.X, w.Y)
	x1, y1 := g.PixelToGeo(w.X+w.Width, w.Y+w.Height)
	ring := orb.Ring{
		{x0, y0},
		{x0, y1},
		{x1, y1},
		{x1, y0},
		{x0, y0},
	}
	return orb.Polygon{ring}
}

// Partition divides a grid into non-overlapping windows of the given edge
// length, row-major from the raster origin. The windows cover every pixel
// exactly once; repeated calls over the same grid produce the same order.
func Partition(g raster.Grid, size int) []Window {
	nRows := (g.Height + size - 1) / size
	nCols := (g.Width + size - 1) / size

	windows := make([]Window, 0, nRows*nCols)
	for row := 0; row < nRows; row++ {
		for col := 0; col < nCols; col++ {
			y := row * size
			x := col * size
			h := size
			if y+h > g.Height {
				h = g.Height - y
			}
			w := size
			if x+w > g.Width {
				w = g.Width - x
			}
			windows = append(windows, Window{Row: row, Col: col, X: x, Y: y, Width: w, Height: h})
		}
	}
	return windows
}
