package timeseries

import (
	"math/rand"
	"testing"
	"time"

	"PharmaWatch/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quarter(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeAggregatesByQuarter(t *testing.T) {
	events := []models.RawEvent{
		{Date: day(2023, 1, 15), Count: 3},
		{Date: day(2023, 2, 20), Count: 2},
		{Date: day(2023, 4, 10), Count: 4},
		{Date: day(2023, 7, 1), Count: 30},
	}
	series, dropped := Normalize(events)
	if dropped != 0 {
		t.Fatalf("unexpected drops: %d", dropped)
	}
	want := models.QuarterSeries{
		{Period: quarter(2023, 1), Count: 5},
		{Period: quarter(2023, 4), Count: 4},
		{Period: quarter(2023, 7), Count: 30},
	}
	assertSeriesEqual(t, series, want)
}

func TestNormalizeFillsGapQuartersWithZero(t *testing.T) {
	events := []models.RawEvent{
		{Date: day(2022, 3, 1), Count: 7},
		{Date: day(2023, 1, 2), Count: 9},
	}
	series, _ := Normalize(events)
	want := models.QuarterSeries{
		{Period: quarter(2022, 1), Count: 7},
		{Period: quarter(2022, 4), Count: 0},
		{Period: quarter(2022, 7), Count: 0},
		{Period: quarter(2022, 10), Count: 0},
		{Period: quarter(2023, 1), Count: 9},
	}
	assertSeriesEqual(t, series, want)
}

func TestNormalizeDropsInvalidEvents(t *testing.T) {
	events := []models.RawEvent{
		{Date: time.Time{}, Count: 5},
		{Date: day(2023, 5, 5), Count: -1},
		{Date: day(2023, 5, 6), Count: 2},
	}
	series, dropped := Normalize(events)
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if len(series) != 1 || series[0].Count != 2 {
		t.Fatalf("unexpected series %v", series)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	series, dropped := Normalize(nil)
	if !series.Empty() {
		t.Fatalf("expected empty series, got %v", series)
	}
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
}

func TestNormalizeAllInvalidInput(t *testing.T) {
	series, dropped := Normalize([]models.RawEvent{{Count: 1}, {Count: 2}})
	if !series.Empty() {
		t.Fatalf("expected empty series, got %v", series)
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
}

func TestNormalizeOrderIndependent(t *testing.T) {
	events := []models.RawEvent{
		{Date: day(2023, 1, 15), Count: 3},
		{Date: day(2023, 1, 16), Count: 1},
		{Date: day(2023, 6, 20), Count: 2},
		{Date: day(2023, 10, 10), Count: 4},
		{Date: day(2024, 2, 28), Count: 8},
	}
	base, baseDropped := Normalize(events)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]models.RawEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, dropped := Normalize(shuffled)
		if dropped != baseDropped {
			t.Fatalf("trial %d: dropped = %d, want %d", trial, dropped, baseDropped)
		}
		assertSeriesEqual(t, got, base)
	}
}

func TestNormalizeSeriesIsContiguous(t *testing.T) {
	events := []models.RawEvent{
		{Date: day(2021, 8, 1), Count: 1},
		{Date: day(2024, 1, 1), Count: 1},
	}
	series, _ := Normalize(events)
	for i := 1; i < len(series); i++ {
		gap := series[i].Period.Sub(series[i-1].Period)
		if gap <= 0 {
			t.Fatalf("periods not increasing at %d", i)
		}
		if !series[i].Period.AddDate(0, -3, 0).Equal(series[i-1].Period) {
			t.Fatalf("gap between %v and %v", series[i-1].Period, series[i].Period)
		}
	}
}

func assertSeriesEqual(t *testing.T, got, want models.QuarterSeries) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("series length %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Period.Equal(want[i].Period) || got[i].Count != want[i].Count {
			t.Fatalf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
