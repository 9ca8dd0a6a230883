package cache

import (
	"math"
	"testing"
	"time"

	"PharmaWatch/internal/domain/models"
)

func q(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestResultStoreBundleRoundTrip(t *testing.T) {
	s := NewResultStore(NewTTLCache(), time.Minute)

	in := &models.MonitorBundle{
		Product: "semaglutide",
		Series: models.QuarterSeries{
			{Period: q(2023, time.January), Count: 5},
			{Period: q(2023, time.April), Count: 40},
		},
		Signals: []models.SignalRecord{
			{Period: q(2023, time.April), Count: 40, AbsoluteChange: 35, PercentChange: 700},
		},
		Summary:     models.SummaryDigest{"total_reports": 45},
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.PutBundle(in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, ok, err := s.GetBundle("semaglutide")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Product != in.Product || len(out.Series) != 2 || len(out.Signals) != 1 {
		t.Fatalf("bundle mismatch: %+v", out)
	}
	if out.Signals[0].PercentChange != 700 {
		t.Fatalf("percent change %v", out.Signals[0].PercentChange)
	}
}

func TestResultStoreInfinitePercentChangeSurvives(t *testing.T) {
	s := NewResultStore(NewTTLCache(), time.Minute)

	in := &models.MonitorBundle{
		Product: "wegovy",
		Signals: []models.SignalRecord{
			{Period: q(2023, time.April), Count: 12, AbsoluteChange: 12, PercentChange: math.Inf(1)},
		},
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.PutBundle(in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, ok, err := s.GetBundle("wegovy")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !math.IsInf(out.Signals[0].PercentChange, 1) {
		t.Fatalf("expected +Inf percent change, got %v", out.Signals[0].PercentChange)
	}
}

func TestResultStoreMissingProduct(t *testing.T) {
	s := NewResultStore(NewTTLCache(), time.Minute)
	if _, ok, err := s.GetBundle("nothing"); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestResultStoreComparisonAndAux(t *testing.T) {
	s := NewResultStore(NewTTLCache(), time.Minute)

	rows := []models.ComparisonRow{{SeriesID: "a", TotalCount: 10, PeakPeriod: q(2023, time.January), PeakCount: 10}}
	if err := s.PutComparison(rows); err != nil {
		t.Fatalf("put comparison: %v", err)
	}
	got, ok, err := s.GetComparison()
	if err != nil || !ok || len(got) != 1 || got[0].SeriesID != "a" {
		t.Fatalf("comparison: %v %v %v", got, ok, err)
	}

	if err := s.PutReactions("a", []models.ReactionCount{{Reaction: "NAUSEA", Count: 9}}); err != nil {
		t.Fatalf("put reactions: %v", err)
	}
	rs, ok, err := s.GetReactions("a")
	if err != nil || !ok || rs[0].Reaction != "NAUSEA" {
		t.Fatalf("reactions: %v %v %v", rs, ok, err)
	}

	if err := s.PutTrials("a", []models.ClinicalTrial{{NCTID: "NCT01234567", Status: "COMPLETED"}}); err != nil {
		t.Fatalf("put trials: %v", err)
	}
	ts, ok, err := s.GetTrials("a")
	if err != nil || !ok || ts[0].NCTID != "NCT01234567" {
		t.Fatalf("trials: %v %v %v", ts, ok, err)
	}
}
