package timeseries

import (
	"math"

	"PharmaWatch/internal/domain/models"
)

// signalPercentThreshold is the relative-growth gate: a quarter must grow by
// more than 50% over the previous quarter to count as a safety signal.
const signalPercentThreshold = 50.0

// DetectSignals flags quarter-over-quarter increases that are large both in
// absolute and relative terms. Both gates must pass: a big percentage jump
// from a tiny base is not enough, and neither is a big absolute jump with
// modest relative growth. When the previous quarter had zero reports the
// relative gate is vacuous (PercentChange is +Inf) and only the absolute gate
// applies. Fewer than two quarters yields no flags.
func DetectSignals(series models.QuarterSeries, minAbsoluteIncrease int) []models.SignalRecord {
	if len(series) < 2 {
		return nil
	}

	var out []models.SignalRecord
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Count
		cur := series[i].Count
		abs := cur - prev
		if abs < minAbsoluteIncrease {
			continue
		}

		var pct float64
		if prev > 0 {
			pct = 100 * float64(abs) / float64(prev)
			if pct <= signalPercentThreshold {
				continue
			}
		} else if cur > 0 {
			pct = math.Inf(1)
		} else {
			continue
		}

		out = append(out, models.SignalRecord{
			Period:         series[i].Period,
			Count:          cur,
			AbsoluteChange: abs,
			PercentChange:  pct,
		})
	}
	return out
}
