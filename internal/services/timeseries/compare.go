package timeseries

import (
	"sort"

	"PharmaWatch/internal/domain/models"
)

// recentWindow is how many trailing quarters feed the recent average.
const recentWindow = 4

// Compare builds one ComparisonRow per non-empty input series. Empty series
// are skipped, not errored on. The recent average uses the last four quarters
// (or all of them when the series is shorter); the peak is the maximum count
// with ties broken by the earliest quarter. Rows come back sorted by series
// id so output is stable regardless of map iteration order.
func Compare(seriesByID map[string]models.QuarterSeries) []models.ComparisonRow {
	rows := make([]models.ComparisonRow, 0, len(seriesByID))
	for id, series := range seriesByID {
		if series.Empty() {
			continue
		}

		counts := series.Counts()
		lo := len(counts) - recentWindow
		if lo < 0 {
			lo = 0
		}

		peak := series[0]
		for _, p := range series[1:] {
			if p.Count > peak.Count {
				peak = p
			}
		}

		rows = append(rows, models.ComparisonRow{
			SeriesID:      id,
			TotalCount:    series.Total(),
			RecentAverage: mean(counts[lo:]),
			PeakPeriod:    peak.Period,
			PeakCount:     peak.Count,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].SeriesID < rows[j].SeriesID })
	return rows
}
