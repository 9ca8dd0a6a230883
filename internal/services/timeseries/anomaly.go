package timeseries

import (
	"math"

	"PharmaWatch/internal/domain/models"
)

const (
	// anomalyWindow is the trailing rolling window length, in quarters.
	anomalyWindow = 4
	// zEpsilon keeps the z-score finite when the local window is flat.
	zEpsilon = 1e-10
)

// DetectAnomalies flags quarters whose count deviates from a trailing rolling
// window of up to four quarters (shorter at the start of the series) by more
// than zThreshold standard deviations. Fewer than three quarters is too
// little history to judge deviation and yields no flags. Output is
// chronological with at most one record per quarter.
func DetectAnomalies(series models.QuarterSeries, zThreshold float64) []models.AnomalyRecord {
	if len(series) < 3 {
		return nil
	}

	counts := series.Counts()
	var out []models.AnomalyRecord
	for i := range series {
		lo := i - anomalyWindow + 1
		if lo < 0 {
			lo = 0
		}
		window := counts[lo : i+1]
		m := mean(window)
		sd := sampleStd(window)
		z := (counts[i] - m) / (sd + zEpsilon)
		if math.Abs(z) > zThreshold {
			out = append(out, models.AnomalyRecord{
				Period:      series[i].Period,
				Count:       series[i].Count,
				RollingMean: m,
				RollingStd:  sd,
				ZScore:      z,
			})
		}
	}
	return out
}
