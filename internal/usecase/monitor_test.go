package usecase

import (
	"context"
	"testing"
	"time"

	"PharmaWatch/internal/domain/models"
	"PharmaWatch/internal/services/forecast"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonitorRunEndToEnd(t *testing.T) {
	m := NewMonitor(forecast.NewSeasonalTrend(), nil)
	events := []models.RawEvent{
		{Date: day(2023, 1, 15), Count: 3},
		{Date: day(2023, 2, 20), Count: 2},
		{Date: day(2023, 4, 10), Count: 4},
		{Date: day(2023, 7, 1), Count: 30},
	}
	bundle := m.Run(context.Background(), "semaglutide", events, DefaultMonitorConfig())

	if bundle.Product != "semaglutide" {
		t.Fatalf("product %q", bundle.Product)
	}
	if len(bundle.Series) != 3 {
		t.Fatalf("series %v", bundle.Series)
	}
	if bundle.Series[0].Count != 5 || bundle.Series[1].Count != 4 || bundle.Series[2].Count != 30 {
		t.Fatalf("unexpected counts %v", bundle.Series)
	}
	if len(bundle.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %v", bundle.Signals)
	}
	if bundle.Signals[0].AbsoluteChange != 26 {
		t.Fatalf("signal abs change %d", bundle.Signals[0].AbsoluteChange)
	}
	if bundle.Forecast == nil {
		t.Fatalf("expected a forecast")
	}
	if len(bundle.Forecast) != 3+DefaultMonitorConfig().ForecastHorizon {
		t.Fatalf("forecast length %d", len(bundle.Forecast))
	}
	if bundle.Errors != nil {
		t.Fatalf("unexpected errors %v", bundle.Errors)
	}
	if _, ok := bundle.Summary["forecast_next_quarter"]; !ok {
		t.Fatalf("summary missing forecast fields: %v", bundle.Summary)
	}
}

func TestMonitorRunSinglePointDegrades(t *testing.T) {
	m := NewMonitor(forecast.NewSeasonalTrend(), nil)
	events := []models.RawEvent{{Date: day(2023, 1, 15), Count: 3}}
	bundle := m.Run(context.Background(), "wegovy", events, DefaultMonitorConfig())

	if len(bundle.Series) != 1 {
		t.Fatalf("series %v", bundle.Series)
	}
	if len(bundle.Anomalies) != 0 || len(bundle.Signals) != 0 {
		t.Fatalf("expected no detections, got %v / %v", bundle.Anomalies, bundle.Signals)
	}
	if bundle.Forecast != nil {
		t.Fatalf("expected no forecast")
	}
	if bundle.Errors["forecast"] != "insufficient data" {
		t.Fatalf("errors %v", bundle.Errors)
	}
	for _, key := range []string{"forecast_next_quarter", "forecast_lower_bound", "forecast_upper_bound"} {
		if _, ok := bundle.Summary[key]; ok {
			t.Fatalf("summary should lack %q", key)
		}
	}
	if bundle.Summary["total_reports"] != 3 {
		t.Fatalf("summary %v", bundle.Summary)
	}
}

func TestMonitorRunEmptyInput(t *testing.T) {
	m := NewMonitor(forecast.NewSeasonalTrend(), nil)
	bundle := m.Run(context.Background(), "rybelsus", nil, DefaultMonitorConfig())

	if !bundle.Series.Empty() {
		t.Fatalf("series %v", bundle.Series)
	}
	if len(bundle.Anomalies) != 0 || len(bundle.Signals) != 0 || bundle.Forecast != nil {
		t.Fatalf("expected empty analysis")
	}
	if len(bundle.Summary) != 0 {
		t.Fatalf("summary %v", bundle.Summary)
	}
}

func TestMonitorRunCountsDrops(t *testing.T) {
	m := NewMonitor(forecast.NewSeasonalTrend(), nil)
	events := []models.RawEvent{
		{Date: time.Time{}, Count: 9},
		{Date: day(2023, 1, 1), Count: 1},
		{Date: day(2023, 4, 1), Count: 2},
	}
	bundle := m.Run(context.Background(), "x", events, DefaultMonitorConfig())
	if bundle.DroppedEvents != 1 {
		t.Fatalf("dropped %d, want 1", bundle.DroppedEvents)
	}
}

func TestCompareProducts(t *testing.T) {
	m := NewMonitor(forecast.NewSeasonalTrend(), nil)
	rows := m.CompareProducts(context.Background(), map[string][]models.RawEvent{
		"a": {{Date: day(2023, 1, 1), Count: 10}, {Date: day(2023, 4, 1), Count: 20}},
		"b": nil,
	})
	if len(rows) != 1 || rows[0].SeriesID != "a" {
		t.Fatalf("rows %v", rows)
	}
	if rows[0].TotalCount != 30 {
		t.Fatalf("total %d", rows[0].TotalCount)
	}
}
