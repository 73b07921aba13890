package patch

import (
	"fmt"
	"math"

	"github.com/gammazero/workerpool"
	"github.com/groundwatch/groundwatch-cli/internal/raster"
	"github.com/schollz/progressbar/v3"
)

// Statistic aggregates the valid pixel differences of one window for one
// index. A window with zero valid pixels is Defined == false: "no data", not
// "no change". Mean and Std of an undefined statistic are NaN and must never
// enter downstream arithmetic.
type Statistic struct {
	Mean    float64
	Std     float64
	Count   int
	Defined bool
	Anomaly bool
}

// Aggregate computes one Statistic per window over a difference raster.
// Windows are processed by a worker pool, but each worker writes into its own
// slot of the pre-sized result slice, so the output keeps the row-major
// window order no matter how the pool schedules tasks.
func Aggregate(r *raster.Raster, windows []Window, workers int, label string) []Statistic {
	results := make([]Statistic, len(windows))

	wp := workerpool.New(workers)
	progressBar := progressbar.Default(int64(len(windows)), fmt.Sprintf("Aggregating %s patches", label))

	for i, window := range windows {
		i, window := i, window
		wp.Submit(func() {
			results[i] = summarize(r, window)
			progressBar.Add(1)
		})
	}
	wp.StopWait()
	progressBar.Finish()
	fmt.Println()

	return results
}

func summarize(r *raster.Raster, w Window) Statistic {
	var sum float64
	count := 0
	for y := w.Y; y < w.Y+w.Height; y++ {
		base := y * r.Width
		for x := w.X; x < w.X+w.Width; x++ {
			if r.Valid[base+x] {
				sum += r.Data[base+x]
				count++
			}
		}
	}

	if count == 0 {
		return Statistic{Mean: math.NaN(), Std: math.NaN()}
	}

	mean := sum / float64(count)
	var sq float64
	for y := w.Y; y < w.Y+w.Height; y++ {
		base := y * r.Width
		for x := w.X; x < w.X+w.Width; x++ {
			if r.Valid[base+x] {
				d := r.Data[base+x] - mean
				sq += d * d
			}
		}
	}

	return Statistic{
		Mean:    mean,
		Std:     math.Sqrt(sq / float64(count)),
		Count:   count,
		Defined: true,
	}
}
