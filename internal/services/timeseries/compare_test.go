package timeseries

import (
	"math"
	"testing"

	"PharmaWatch/internal/domain/models"
)

func TestCompareWorkedExample(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 10, 20, 5)
	rows := Compare(map[string]models.QuarterSeries{"semaglutide": series})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %v", rows)
	}
	r := rows[0]
	if r.SeriesID != "semaglutide" {
		t.Fatalf("series id %q", r.SeriesID)
	}
	if r.TotalCount != 35 {
		t.Fatalf("total %d, want 35", r.TotalCount)
	}
	if !r.PeakPeriod.Equal(quarter(2023, 4)) || r.PeakCount != 20 {
		t.Fatalf("peak %v/%d, want 2023Q2/20", r.PeakPeriod, r.PeakCount)
	}
	if math.Abs(r.RecentAverage-35.0/3.0) > 1e-9 {
		t.Fatalf("recent average %f, want %f", r.RecentAverage, 35.0/3.0)
	}
}

func TestCompareRecentAverageUsesLastFour(t *testing.T) {
	series := countsSeries(quarter(2022, 1), 100, 100, 1, 2, 3, 4)
	rows := Compare(map[string]models.QuarterSeries{"a": series})
	if math.Abs(rows[0].RecentAverage-2.5) > 1e-9 {
		t.Fatalf("recent average %f, want 2.5", rows[0].RecentAverage)
	}
}

func TestComparePeakTieBreaksEarliest(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 7, 9, 9, 2)
	rows := Compare(map[string]models.QuarterSeries{"a": series})
	if !rows[0].PeakPeriod.Equal(quarter(2023, 4)) {
		t.Fatalf("peak period %v, want earliest max", rows[0].PeakPeriod)
	}
}

func TestCompareSkipsEmptySeries(t *testing.T) {
	rows := Compare(map[string]models.QuarterSeries{
		"empty": {},
		"full":  countsSeries(quarter(2023, 1), 1, 2),
	})
	if len(rows) != 1 || rows[0].SeriesID != "full" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestCompareRowsSortedByID(t *testing.T) {
	rows := Compare(map[string]models.QuarterSeries{
		"wegovy":      countsSeries(quarter(2023, 1), 1, 2),
		"rybelsus":    countsSeries(quarter(2023, 1), 3),
		"semaglutide": countsSeries(quarter(2023, 1), 4, 5),
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].SeriesID >= rows[i].SeriesID {
			t.Fatalf("rows not sorted: %v", rows)
		}
	}
}
