package timeseries

import (
	"math"
	"testing"
	"time"

	"PharmaWatch/internal/domain/models"
)

func countsSeries(start time.Time, counts ...int) models.QuarterSeries {
	series := make(models.QuarterSeries, 0, len(counts))
	q := start
	for _, c := range counts {
		series = append(series, models.QuarterPoint{Period: q, Count: c})
		q = q.AddDate(0, 3, 0)
	}
	return series
}

func TestDetectAnomaliesTooShort(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 10, 12)
	if got := DetectAnomalies(series, 2.0); len(got) != 0 {
		t.Fatalf("expected no anomalies, got %v", got)
	}
	if got := DetectAnomalies(nil, 2.0); len(got) != 0 {
		t.Fatalf("expected no anomalies on empty series")
	}
}

func TestDetectAnomaliesFlagsSpike(t *testing.T) {
	// With a trailing window that contains the flagged point itself, the
	// z-score of a lone spike over a flat baseline tops out at 1.5 for a
	// window of four, so the test threshold sits just under that.
	series := countsSeries(quarter(2022, 1), 10, 10, 10, 10, 10, 100)
	got := DetectAnomalies(series, 1.4)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %v", got)
	}
	a := got[0]
	if !a.Period.Equal(quarter(2023, 4)) {
		t.Fatalf("anomaly period %v", a.Period)
	}
	if a.Count != 100 {
		t.Fatalf("anomaly count %d", a.Count)
	}
	if a.ZScore <= 1.4 {
		t.Fatalf("z-score %f not above threshold", a.ZScore)
	}
}

func TestDetectAnomaliesRollingWindowMath(t *testing.T) {
	// Window at index 2 is the first three counts.
	series := countsSeries(quarter(2023, 1), 2, 4, 12)
	got := DetectAnomalies(series, 1.0)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %v", got)
	}
	a := got[0]
	if math.Abs(a.RollingMean-6.0) > 1e-9 {
		t.Fatalf("rolling mean %f, want 6", a.RollingMean)
	}
	wantStd := math.Sqrt(((2-6.0)*(2-6.0) + (4-6.0)*(4-6.0) + (12-6.0)*(12-6.0)) / 2)
	if math.Abs(a.RollingStd-wantStd) > 1e-9 {
		t.Fatalf("rolling std %f, want %f", a.RollingStd, wantStd)
	}
	wantZ := (12 - 6.0) / (wantStd + zEpsilon)
	if math.Abs(a.ZScore-wantZ) > 1e-9 {
		t.Fatalf("z-score %f, want %f", a.ZScore, wantZ)
	}
}

func TestDetectAnomaliesFlatSeries(t *testing.T) {
	// A flat window has std 0; epsilon keeps z finite and zero.
	series := countsSeries(quarter(2023, 1), 5, 5, 5, 5, 5)
	if got := DetectAnomalies(series, 2.0); len(got) != 0 {
		t.Fatalf("expected no anomalies on flat series, got %v", got)
	}
}

func TestDetectAnomaliesThresholdMonotonic(t *testing.T) {
	series := countsSeries(quarter(2021, 1), 3, 8, 2, 40, 5, 4, 90, 3, 2, 60)
	prev := len(DetectAnomalies(series, 0.5))
	for _, thr := range []float64{1.0, 1.5, 2.0, 3.0, 5.0} {
		n := len(DetectAnomalies(series, thr))
		if n > prev {
			t.Fatalf("threshold %f flagged %d > %d", thr, n, prev)
		}
		prev = n
	}
}

func TestDetectAnomaliesChronologicalAndUnique(t *testing.T) {
	series := countsSeries(quarter(2021, 1), 1, 1, 50, 1, 1, 80, 1)
	got := DetectAnomalies(series, 1.0)
	seen := map[int64]bool{}
	for i, a := range got {
		if i > 0 && !got[i-1].Period.Before(a.Period) {
			t.Fatalf("records out of order at %d", i)
		}
		key := a.Period.Unix()
		if seen[key] {
			t.Fatalf("duplicate period %v", a.Period)
		}
		seen[key] = true
	}
}
