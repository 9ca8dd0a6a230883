package timeseries

import (
	"PharmaWatch/internal/domain/models"
)

// Summarize produces the flat statistical digest of a series and, when a
// forecast is supplied, the next-quarter prediction with its bounds. An empty
// series yields an empty digest. The trend key compares only the first and
// last quarter; equal counts classify as "decreasing".
//
// Forecast keys are present only when the forecast contains a point strictly
// after the last observed quarter; otherwise they are omitted entirely rather
// than set to a sentinel.
func Summarize(series models.QuarterSeries, forecast models.ForecastResult) models.SummaryDigest {
	if series.Empty() {
		return models.SummaryDigest{}
	}

	counts := series.Counts()
	trend := "decreasing"
	if series.Last().Count > series.First().Count {
		trend = "increasing"
	}

	digest := models.SummaryDigest{
		"total_reports":          series.Total(),
		"avg_quarterly_reports":  mean(counts),
		"std_quarterly_reports":  sampleStd(counts),
		"trend":                  trend,
		"recent_quarter_reports": series.Last().Count,
		"data_start":             series.First().Period,
		"data_end":               series.Last().Period,
	}

	if next, ok := forecast.FirstAfter(series.Last().Period); ok {
		digest["forecast_next_quarter"] = next.Estimate
		digest["forecast_lower_bound"] = next.Lower
		digest["forecast_upper_bound"] = next.Upper
	}

	return digest
}
