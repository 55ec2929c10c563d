package monitoring

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DurationStats summarizes recent compile durations for the JSON
// metrics surface. All values are seconds.
type DurationStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	P99   float64 `json:"p99"`
}

// CompileDurationStats computes mean and quantiles over the recent
// compile-duration window.
func (m *Metrics) CompileDurationStats() DurationStats {
	snap := m.GetSnapshot()
	if len(snap.RecentDurations) == 0 {
		return DurationStats{}
	}

	sorted := append([]float64(nil), snap.RecentDurations...)
	sort.Float64s(sorted)

	return DurationStats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
}
