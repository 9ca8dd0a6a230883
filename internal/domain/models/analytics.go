package models

import (
	"encoding/json"
	"math"
	"time"
)

// AnomalyRecord flags a quarter whose count deviates abnormally from its
// trailing rolling window.
type AnomalyRecord struct {
	Period      time.Time `json:"period"`
	Count       int       `json:"count"`
	RollingMean float64   `json:"rolling_mean"`
	RollingStd  float64   `json:"rolling_std"`
	ZScore      float64   `json:"z_score"`
}

// SignalRecord flags a quarter with a sharp absolute-and-relative increase in
// report volume over the previous quarter. PercentChange is +Inf when the
// previous quarter had zero reports.
type SignalRecord struct {
	Period         time.Time `json:"period"`
	Count          int       `json:"count"`
	AbsoluteChange int       `json:"absolute_change"`
	PercentChange  float64   `json:"percent_change"`
}

type signalRecordJSON struct {
	Period         time.Time `json:"period"`
	Count          int       `json:"count"`
	AbsoluteChange int       `json:"absolute_change"`
	PercentChange  *float64  `json:"percent_change"`
}

// MarshalJSON emits the zero-base infinite percent change as null; JSON has
// no representation for +Inf.
func (s SignalRecord) MarshalJSON() ([]byte, error) {
	out := signalRecordJSON{
		Period:         s.Period,
		Count:          s.Count,
		AbsoluteChange: s.AbsoluteChange,
	}
	if !math.IsInf(s.PercentChange, 0) {
		out.PercentChange = &s.PercentChange
	}
	return json.Marshal(out)
}

func (s *SignalRecord) UnmarshalJSON(b []byte) error {
	var in signalRecordJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	s.Period = in.Period
	s.Count = in.Count
	s.AbsoluteChange = in.AbsoluteChange
	if in.PercentChange == nil {
		s.PercentChange = math.Inf(1)
	} else {
		s.PercentChange = *in.PercentChange
	}
	return nil
}

// ComparisonRow summarizes one product's series for cross-product ranking.
type ComparisonRow struct {
	SeriesID      string    `json:"series_id"`
	TotalCount    int       `json:"total_count"`
	RecentAverage float64   `json:"recent_average"`
	PeakPeriod    time.Time `json:"peak_period"`
	PeakCount     int       `json:"peak_count"`
}

// SummaryDigest is a flat mapping of named scalar metrics describing a series
// and, when available, its next-quarter forecast. Values are semantic types
// (time.Time for dates), never pre-formatted strings.
type SummaryDigest map[string]any

// MonitorBundle is the result of one monitoring run for one product, assembled
// by the orchestrator and consumed verbatim by the facade, cache, and stores.
// Forecast is nil when forecasting was unavailable for this run.
type MonitorBundle struct {
	Product       string            `json:"product"`
	Series        QuarterSeries     `json:"series"`
	Anomalies     []AnomalyRecord   `json:"anomalies"`
	Signals       []SignalRecord    `json:"signals"`
	Forecast      ForecastResult    `json:"forecast,omitempty"`
	Summary       SummaryDigest     `json:"summary"`
	DroppedEvents int               `json:"dropped_events"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Errors        map[string]string `json:"errors,omitempty"`
}
