package models

import "time"

// ForecastPoint is one period of a fitted-or-predicted series with a
// confidence band. Lower <= Estimate <= Upper always holds.
type ForecastPoint struct {
	Period   time.Time `json:"period"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// ForecastResult covers every historical period of the fitted series plus
// exactly the requested horizon of future quarters, in period order.
type ForecastResult []ForecastPoint

// FirstAfter returns the earliest point strictly after t, if any.
func (r ForecastResult) FirstAfter(t time.Time) (ForecastPoint, bool) {
	for _, p := range r {
		if p.Period.After(t) {
			return p, true
		}
	}
	return ForecastPoint{}, false
}

// ForecastConfig tunes the forecasting capability. ChangepointSensitivity is
// in (0,1]; Confidence is the interval mass in (0,1).
type ForecastConfig struct {
	ChangepointSensitivity float64
	Confidence             float64
}
