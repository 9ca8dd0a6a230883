package service

import (
	"context"

	"PharmaWatch/internal/domain/models"
)

// Forecaster is the external forecasting capability behind a stable contract.
// Implementations must return a result covering every historical period of
// the input series plus exactly horizon future quarters, with
// Lower <= Estimate <= Upper at every point. Fewer than two historical points
// must fail with forecast.ErrInsufficientData.
type Forecaster interface {
	FitAndForecast(ctx context.Context, series models.QuarterSeries, horizon int, cfg models.ForecastConfig) (models.ForecastResult, error)
}

// EventSource fetches raw adverse-event report counts for a product.
type EventSource interface {
	FetchEventCounts(ctx context.Context, product string) ([]models.RawEvent, error)
}

// ReactionSource fetches the top reported reaction terms for a product.
type ReactionSource interface {
	FetchTopReactions(ctx context.Context, product string, limit int) ([]models.ReactionCount, error)
}

// TrialSource fetches clinical study records for a product.
type TrialSource interface {
	FetchStudies(ctx context.Context, product string) ([]models.ClinicalTrial, error)
}
