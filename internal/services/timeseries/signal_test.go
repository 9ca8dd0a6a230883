package timeseries

import (
	"math"
	"testing"
)

func TestDetectSignalsTooShort(t *testing.T) {
	if got := DetectSignals(countsSeries(quarter(2023, 1), 40), 10); len(got) != 0 {
		t.Fatalf("expected no signals, got %v", got)
	}
	if got := DetectSignals(nil, 10); len(got) != 0 {
		t.Fatalf("expected no signals on empty series")
	}
}

func TestDetectSignalsEndToEndScenario(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 5, 4, 30)
	got := DetectSignals(series, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %v", got)
	}
	s := got[0]
	if !s.Period.Equal(quarter(2023, 7)) {
		t.Fatalf("signal period %v", s.Period)
	}
	if s.AbsoluteChange != 26 {
		t.Fatalf("absolute change %d, want 26", s.AbsoluteChange)
	}
	if math.Abs(s.PercentChange-650) > 1e-9 {
		t.Fatalf("percent change %f, want 650", s.PercentChange)
	}
}

func TestDetectSignalsRequiresBothGates(t *testing.T) {
	// Large relative jump from a tiny base: absolute gate fails.
	small := countsSeries(quarter(2023, 1), 2, 8)
	if got := DetectSignals(small, 10); len(got) != 0 {
		t.Fatalf("small-base jump should not signal, got %v", got)
	}

	// Large absolute jump with modest relative growth: percent gate fails.
	modest := countsSeries(quarter(2023, 1), 100, 140)
	if got := DetectSignals(modest, 10); len(got) != 0 {
		t.Fatalf("modest relative growth should not signal, got %v", got)
	}

	// Exactly 50% growth is not a signal; the gate is strict.
	boundary := countsSeries(quarter(2023, 1), 100, 150)
	if got := DetectSignals(boundary, 10); len(got) != 0 {
		t.Fatalf("50%% growth should not signal, got %v", got)
	}
}

func TestDetectSignalsZeroBase(t *testing.T) {
	series := countsSeries(quarter(2023, 1), 0, 12)
	got := DetectSignals(series, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %v", got)
	}
	if !math.IsInf(got[0].PercentChange, 1) {
		t.Fatalf("percent change %f, want +Inf", got[0].PercentChange)
	}

	// Below the absolute gate the zero-base case does not signal.
	small := countsSeries(quarter(2023, 1), 0, 5)
	if got := DetectSignals(small, 10); len(got) != 0 {
		t.Fatalf("zero-base below absolute gate should not signal, got %v", got)
	}
}

func TestDetectSignalsChronological(t *testing.T) {
	series := countsSeries(quarter(2022, 1), 5, 40, 10, 100, 20)
	got := DetectSignals(series, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %v", got)
	}
	if !got[0].Period.Before(got[1].Period) {
		t.Fatalf("signals out of order: %v", got)
	}
}

func TestDetectSignalsConjunctionProperty(t *testing.T) {
	series := countsSeries(quarter(2020, 1), 0, 15, 3, 80, 85, 10, 90, 90, 200)
	minAbs := 12
	for _, s := range DetectSignals(series, minAbs) {
		if s.AbsoluteChange < minAbs {
			t.Fatalf("signal %v below absolute gate", s)
		}
		if !math.IsInf(s.PercentChange, 1) && s.PercentChange <= 50 {
			t.Fatalf("signal %v below percent gate", s)
		}
	}
}
