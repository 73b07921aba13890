package patch

import (
	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/paulmach/orb"
)

// Record is the per-patch unit of the output collection: grid address,
// bounding polygon in the target CRS and one Statistic per index name.
type Record struct {
	Tile     string
	Row      int
	Col      int
	Geometry orb.Polygon
	Stats    map[string]Statistic
}

// Assemble merges per-index statistics into one record per window. Every
// stats slice must be aggregated from the same window partition.
func Assemble(tile string, windows []Window, grid raster.Grid, stats map[string][]Statistic) []Record {
	records := make([]Record, len(windows))
	for i, w := range windows {
		rec := Record{
			Tile:     tile,
			Row:      w.Row,
			Col:      w.Col,
			Geometry: w.Polygon(grid),
			Stats:    make(map[string]Statistic, len(stats)),
		}
		for name, s := range stats {
			rec.Stats[name] = s[i]
		}
		records[i] = rec
	}
	return records
}
