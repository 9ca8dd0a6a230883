package models

import "time"

// RawEvent is a single adverse-event report count observation as delivered by
// an upstream source. Dates may be irregular, duplicated, or zero (invalid);
// the normalizer is responsible for cleaning them up.
type RawEvent struct {
	Date  time.Time
	Count int
}

// QuarterPoint is one aggregated quarter of a product's report history.
// Period is always a quarter-start date (Jan/Apr/Jul/Oct 1, UTC).
type QuarterPoint struct {
	Period time.Time `json:"period"`
	Count  int       `json:"count"`
}

// QuarterSeries is a gap-free, strictly increasing quarterly count series.
// Quarters with no observed reports are present with Count 0. Treated as
// immutable once built.
type QuarterSeries []QuarterPoint

func (s QuarterSeries) Empty() bool { return len(s) == 0 }

// First returns the earliest point. Callers must check Empty first.
func (s QuarterSeries) First() QuarterPoint { return s[0] }

// Last returns the most recent point. Callers must check Empty first.
func (s QuarterSeries) Last() QuarterPoint { return s[len(s)-1] }

// Counts returns the count column as float64 for statistics.
func (s QuarterSeries) Counts() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Count)
	}
	return out
}

// Total sums all counts in the series.
func (s QuarterSeries) Total() int {
	sum := 0
	for _, p := range s {
		sum += p.Count
	}
	return sum
}
