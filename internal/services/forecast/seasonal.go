package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"PharmaWatch/internal/domain/models"
	domsvc "PharmaWatch/internal/domain/service"
	"PharmaWatch/pkg/util"
)

// SeasonalTrend is the built-in forecasting model: an ordinary least squares
// linear trend plus per-quarter seasonal offsets estimated from the detrended
// counts. Confidence bands come from the in-sample residual spread; future
// bands widen per step ahead at a rate scaled by the changepoint sensitivity,
// since a more changepoint-prone series is less predictable further out.
//
// It is deliberately simple; any conforming implementation (including the
// HTTP adapter to a full structural model service) can replace it.
type SeasonalTrend struct{}

func NewSeasonalTrend() *SeasonalTrend { return &SeasonalTrend{} }

func (m *SeasonalTrend) FitAndForecast(_ context.Context, series models.QuarterSeries, horizon int, cfg models.ForecastConfig) (models.ForecastResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if horizon < 0 {
		return nil, fmt.Errorf("forecast: negative horizon %d", horizon)
	}
	if len(series) < minHistory {
		return nil, ErrInsufficientData
	}

	n := len(series)
	y := series.Counts()
	intercept, slope := fitLine(y)

	// Seasonal offsets: mean detrended count per quarter-of-year, used only
	// when that quarter has been observed at least twice.
	var seasonalSum [4]float64
	var seasonalN [4]int
	for i, p := range series {
		q := quarterIndex(p.Period)
		seasonalSum[q] += y[i] - (intercept + slope*float64(i))
		seasonalN[q]++
	}
	seasonal := func(q int) float64 {
		if seasonalN[q] < 2 {
			return 0
		}
		return seasonalSum[q] / float64(seasonalN[q])
	}

	fitted := make([]float64, n)
	for i, p := range series {
		fitted[i] = intercept + slope*float64(i) + seasonal(quarterIndex(p.Period))
	}

	residStd := 0.0
	if n > 2 {
		sum2 := 0.0
		for i := range y {
			d := y[i] - fitted[i]
			sum2 += d * d
		}
		residStd = math.Sqrt(sum2 / float64(n-2))
	}

	z := math.Sqrt2 * math.Erfinv(cfg.Confidence)

	result := make(models.ForecastResult, 0, n+horizon)
	for i, p := range series {
		margin := z * residStd
		result = append(result, floorAtZero(models.ForecastPoint{
			Period:   p.Period,
			Estimate: fitted[i],
			Lower:    fitted[i] - margin,
			Upper:    fitted[i] + margin,
		}))
	}

	period := series.Last().Period
	for k := 1; k <= horizon; k++ {
		period = util.NextQuarter(period)
		est := intercept + slope*float64(n-1+k) + seasonal(quarterIndex(period))
		margin := z * residStd * (1 + cfg.ChangepointSensitivity*float64(k))
		result = append(result, floorAtZero(models.ForecastPoint{
			Period:   period,
			Estimate: est,
			Lower:    est - margin,
			Upper:    est + margin,
		}))
	}
	return result, nil
}

// floorAtZero clips a point to the non-negative range report counts live in.
// The clip is monotone, so Lower <= Estimate <= Upper is preserved.
func floorAtZero(p models.ForecastPoint) models.ForecastPoint {
	p.Lower = math.Max(0, p.Lower)
	p.Estimate = math.Max(0, p.Estimate)
	p.Upper = math.Max(0, p.Upper)
	return p
}

// fitLine is ordinary least squares of y against its index.
func fitLine(y []float64) (intercept, slope float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return intercept, slope
}

func quarterIndex(t time.Time) int {
	return (int(t.Month()) - 1) / 3
}

var _ domsvc.Forecaster = (*SeasonalTrend)(nil)
