package util

import (
	"testing"
	"time"
)

func TestParseDateCompact(t *testing.T) {
	got, ok := ParseDate("20230715")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateISO(t *testing.T) {
	got, ok := ParseDate("2023-01-15")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2023 || got.Month() != time.January || got.Day() != 15 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate("not-a-date"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected parse failure for empty")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestQuarterStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2023, 2, 20, 13, 5, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 9, 30, 23, 59, 0, 0, time.UTC), time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := QuarterStart(c.in); !got.Equal(c.want) {
			t.Fatalf("QuarterStart(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNextQuarterRollsYear(t *testing.T) {
	got := NextQuarter(time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC))
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestQuartersBetween(t *testing.T) {
	a := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if n := QuartersBetween(a, b); n != 6 {
		t.Fatalf("got %d, want 6", n)
	}
	if n := QuartersBetween(b, a); n != -6 {
		t.Fatalf("got %d, want -6", n)
	}
	if n := QuartersBetween(a, a); n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}
