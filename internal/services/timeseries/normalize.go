package timeseries

import (
	"time"

	"PharmaWatch/internal/domain/models"
	"PharmaWatch/pkg/util"
)

// Normalize converts raw, unsorted, possibly gappy report observations into a
// gap-free quarterly count series spanning the full observed range. Events
// with a zero timestamp or a negative count are dropped individually; the
// number of drops is returned for diagnostics. An empty input is a normal
// outcome and yields an empty series, never an error.
//
// The result is deterministic for any permutation of the same input multiset.
func Normalize(events []models.RawEvent) (models.QuarterSeries, int) {
	dropped := 0
	byQuarter := make(map[int64]int)
	var minQ, maxQ time.Time

	for _, ev := range events {
		if ev.Date.IsZero() || ev.Count < 0 {
			dropped++
			continue
		}
		q := util.QuarterStart(ev.Date)
		if len(byQuarter) == 0 || q.Before(minQ) {
			minQ = q
		}
		if len(byQuarter) == 0 || q.After(maxQ) {
			maxQ = q
		}
		byQuarter[q.Unix()] += ev.Count
	}

	if len(byQuarter) == 0 {
		return models.QuarterSeries{}, dropped
	}

	// Materialize every quarter in [minQ, maxQ]; rolling statistics and
	// percent-change downstream assume no gaps.
	n := util.QuartersBetween(minQ, maxQ) + 1
	series := make(models.QuarterSeries, 0, n)
	for q := minQ; !q.After(maxQ); q = util.NextQuarter(q) {
		series = append(series, models.QuarterPoint{Period: q, Count: byQuarter[q.Unix()]})
	}
	return series, dropped
}
