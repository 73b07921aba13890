package patch

import "math"

// FlagAnomalies marks every defined statistic whose mean deviates from the
// global mean of patch means by more than threshold times their global
// standard deviation. The reference distribution is built from the defined
// patches of the same index, so indices never influence each other. Returns
// the number of flagged patches.
//
// With fewer than two defined patches there is no distribution to compare
// against and nothing is flagged.
func FlagAnomalies(stats []Statistic, threshold float64) int {
	var sum float64
	n := 0
	for _, s := range stats {
		if s.Defined {
			sum += s.Mean
			n++
		}
	}
	if n < 2 {
		return 0
	}
	globalMean := sum / float64(n)

	var sq float64
	for _, s := range stats {
		if s.Defined {
			d := s.Mean - globalMean
			sq += d * d
		}
	}
	globalStd := math.Sqrt(sq / float64(n))

	flagged := 0
	for i := range stats {
		if !stats[i].Defined {
			continue
		}
		if math.Abs(stats[i].Mean-globalMean) > threshold*globalStd {
			stats[i].Anomaly = true
			flagged++
		}
	}
	return flagged
}
