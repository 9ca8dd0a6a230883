package forecast

import (
	"errors"
	"fmt"

	"PharmaWatch/internal/domain/models"
)

// ErrInsufficientData is returned when forecasting is attempted on fewer than
// two historical quarters. Callers treat it as "forecast unavailable" and
// proceed with the rest of the pipeline.
var ErrInsufficientData = errors.New("forecast: insufficient data, need at least 2 quarters")

// minHistory is the smallest series a model can be fit on.
const minHistory = 2

func validateConfig(cfg models.ForecastConfig) error {
	if cfg.ChangepointSensitivity <= 0 || cfg.ChangepointSensitivity > 1 {
		return fmt.Errorf("forecast: changepoint sensitivity %f out of (0,1]", cfg.ChangepointSensitivity)
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		return fmt.Errorf("forecast: confidence %f out of (0,1)", cfg.Confidence)
	}
	return nil
}
