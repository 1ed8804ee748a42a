package features

import "math"

// Stats summarizes a per-frame score series.
type Stats struct {
	Mean  float64
	Max   float64
	Std   float64
	Count int
}

// Empty reports whether the series had no observations. Empty stats carry
// 0.0 for every statistic.
func (s Stats) Empty() bool { return s.Count == 0 }

// Summarize returns the mean, maximum and population standard deviation of
// series. An empty series yields all zeros.
func Summarize(series []float64) Stats {
	if len(series) == 0 {
		return Stats{}
	}
	var sum float64
	peak := series[0]
	for _, x := range series {
		sum += x
		if x > peak {
			peak = x
		}
	}
	mean := sum / float64(len(series))

	var sq float64
	for _, x := range series {
		d := x - mean
		sq += d * d
	}

	return Stats{
		Mean:  mean,
		Max:   peak,
		Std:   math.Sqrt(sq / float64(len(series))),
		Count: len(series),
	}
}
