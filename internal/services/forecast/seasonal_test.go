package forecast

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"PharmaWatch/internal/domain/models"
)

func quarterly(start time.Time, counts ...int) models.QuarterSeries {
	series := make(models.QuarterSeries, 0, len(counts))
	q := start
	for _, c := range counts {
		series = append(series, models.QuarterPoint{Period: q, Count: c})
		q = q.AddDate(0, 3, 0)
	}
	return series
}

var testCfg = models.ForecastConfig{ChangepointSensitivity: 0.05, Confidence: 0.95}

func TestSeasonalTrendInsufficientData(t *testing.T) {
	m := NewSeasonalTrend()
	_, err := m.FitAndForecast(context.Background(), quarterly(q1(2023), 5), 4, testCfg)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	_, err = m.FitAndForecast(context.Background(), nil, 4, testCfg)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData on empty series, got %v", err)
	}
}

func TestSeasonalTrendCoversHistoryPlusHorizon(t *testing.T) {
	m := NewSeasonalTrend()
	series := quarterly(q1(2022), 10, 12, 14, 13, 15, 18)
	res, err := m.FitAndForecast(context.Background(), series, 4, testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != len(series)+4 {
		t.Fatalf("result length %d, want %d", len(res), len(series)+4)
	}
	for i, p := range series {
		if !res[i].Period.Equal(p.Period) {
			t.Fatalf("historical period %d = %v, want %v", i, res[i].Period, p.Period)
		}
	}
	last := series.Last().Period
	for _, p := range res[len(series):] {
		if !p.Period.After(last) {
			t.Fatalf("future period %v does not follow %v", p.Period, last)
		}
	}
}

func TestSeasonalTrendBoundsOrdered(t *testing.T) {
	m := NewSeasonalTrend()
	series := quarterly(q1(2021), 3, 9, 2, 40, 5, 4, 90, 3, 2, 60)
	res, err := m.FitAndForecast(context.Background(), series, 8, testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range res {
		if p.Lower > p.Estimate || p.Estimate > p.Upper {
			t.Fatalf("bounds out of order at %v: %f %f %f", p.Period, p.Lower, p.Estimate, p.Upper)
		}
	}
}

func TestSeasonalTrendFloorsBoundsAtZero(t *testing.T) {
	m := NewSeasonalTrend()
	series := quarterly(q1(2022), 40, 30, 20, 12, 5, 2)
	res, err := m.FitAndForecast(context.Background(), series, 4, testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range res {
		if p.Lower < 0 || p.Estimate < 0 || p.Upper < 0 {
			t.Fatalf("negative band at %v: %f %f %f", p.Period, p.Lower, p.Estimate, p.Upper)
		}
		if p.Lower > p.Estimate || p.Estimate > p.Upper {
			t.Fatalf("bounds out of order at %v: %f %f %f", p.Period, p.Lower, p.Estimate, p.Upper)
		}
	}
}

func TestSeasonalTrendTracksLinearSeries(t *testing.T) {
	m := NewSeasonalTrend()
	counts := make([]int, 12)
	for i := range counts {
		counts[i] = 10 + 3*i
	}
	series := quarterly(q1(2021), counts...)
	res, err := m.FitAndForecast(context.Background(), series, 2, testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Residuals on a noiseless linear series should be tiny.
	for i, p := range series {
		if math.Abs(res[i].Estimate-float64(p.Count)) > 1e-6 {
			t.Fatalf("fit at %d = %f, want %d", i, res[i].Estimate, p.Count)
		}
	}
	// And the extrapolation should continue the line.
	next := res[len(series)]
	if math.Abs(next.Estimate-float64(10+3*12)) > 1e-6 {
		t.Fatalf("extrapolation %f, want %d", next.Estimate, 10+3*12)
	}
}

func TestSeasonalTrendZeroHorizon(t *testing.T) {
	m := NewSeasonalTrend()
	series := quarterly(q1(2023), 4, 6, 8)
	res, err := m.FitAndForecast(context.Background(), series, 0, testCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res) != len(series) {
		t.Fatalf("result length %d, want %d", len(res), len(series))
	}
}

func TestSeasonalTrendRejectsBadConfig(t *testing.T) {
	m := NewSeasonalTrend()
	series := quarterly(q1(2023), 4, 6, 8)
	cases := []models.ForecastConfig{
		{ChangepointSensitivity: 0, Confidence: 0.95},
		{ChangepointSensitivity: 1.5, Confidence: 0.95},
		{ChangepointSensitivity: 0.05, Confidence: 0},
		{ChangepointSensitivity: 0.05, Confidence: 1},
	}
	for _, cfg := range cases {
		if _, err := m.FitAndForecast(context.Background(), series, 2, cfg); err == nil {
			t.Fatalf("expected error for config %+v", cfg)
		}
	}
}

func q1(year int) time.Time {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
}
