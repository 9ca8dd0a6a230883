package timeseries

import (
	"math"
	"testing"

	"PharmaWatch/internal/domain/models"
)

func TestSummarizeEmptySeries(t *testing.T) {
	digest := Summarize(models.QuarterSeries{}, nil)
	if len(digest) != 0 {
		t.Fatalf("expected empty digest, got %v", digest)
	}
}

func TestSummarizeBasicStats(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 4, 8, 12)
	digest := Summarize(series, nil)

	if digest["total_reports"] != 24 {
		t.Fatalf("total %v", digest["total_reports"])
	}
	if avg := digest["avg_quarterly_reports"].(float64); math.Abs(avg-8) > 1e-9 {
		t.Fatalf("avg %f", avg)
	}
	if std := digest["std_quarterly_reports"].(float64); math.Abs(std-4) > 1e-9 {
		t.Fatalf("std %f", std)
	}
	if digest["trend"] != "increasing" {
		t.Fatalf("trend %v", digest["trend"])
	}
	if digest["recent_quarter_reports"] != 12 {
		t.Fatalf("recent %v", digest["recent_quarter_reports"])
	}
}

func TestSummarizeTrendTieIsDecreasing(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 6, 30, 6)
	digest := Summarize(series, nil)
	if digest["trend"] != "decreasing" {
		t.Fatalf("trend %v, want decreasing on tie", digest["trend"])
	}
}

func TestSummarizeForecastFields(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 5, 6)
	forecast := models.ForecastResult{
		{Period: quarter(2023, 1), Estimate: 5.1, Lower: 4, Upper: 6},
		{Period: quarter(2023, 4), Estimate: 5.9, Lower: 5, Upper: 7},
		{Period: quarter(2023, 7), Estimate: 7.5, Lower: 6, Upper: 9},
	}
	digest := Summarize(series, forecast)
	if est := digest["forecast_next_quarter"].(float64); math.Abs(est-7.5) > 1e-9 {
		t.Fatalf("forecast estimate %f", est)
	}
	if lo := digest["forecast_lower_bound"].(float64); math.Abs(lo-6) > 1e-9 {
		t.Fatalf("forecast lower %f", lo)
	}
	if up := digest["forecast_upper_bound"].(float64); math.Abs(up-9) > 1e-9 {
		t.Fatalf("forecast upper %f", up)
	}
}

func TestSummarizeOmitsForecastWithoutFuturePoint(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 5, 6)
	historyOnly := models.ForecastResult{
		{Period: quarter(2023, 1), Estimate: 5, Lower: 4, Upper: 6},
		{Period: quarter(2023, 4), Estimate: 6, Lower: 5, Upper: 7},
	}
	digest := Summarize(series, historyOnly)
	for _, key := range []string{"forecast_next_quarter", "forecast_lower_bound", "forecast_upper_bound"} {
		if _, ok := digest[key]; ok {
			t.Fatalf("key %q should be omitted", key)
		}
	}
}
