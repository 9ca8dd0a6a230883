package forecast

import (
	"context"
	"fmt"
	"time"

	"PharmaWatch/internal/domain/models"
	domsvc "PharmaWatch/internal/domain/service"
	"PharmaWatch/pkg/config"
	xhttp "PharmaWatch/pkg/http"
	"PharmaWatch/pkg/util"
)

// HTTPForecaster delegates fitting to an external model service (a full
// trend/seasonality decomposition model) over JSON. The wire contract mirrors
// FitAndForecast: history in, history-plus-horizon out.
type HTTPForecaster struct {
	baseURL string
	client  *xhttp.Client
}

func NewHTTPForecaster(cfg *config.Config) *HTTPForecaster {
	timeout := cfg.Forecast.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPForecaster{
		baseURL: cfg.Forecast.ServiceURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type forecastReqPoint struct {
	Period string `json:"period"` // 2006-01-02
	Count  int    `json:"count"`
}

type forecastReq struct {
	Series                 []forecastReqPoint `json:"series"`
	Horizon                int                `json:"horizon"`
	ChangepointSensitivity float64            `json:"changepoint_sensitivity"`
	Confidence             float64            `json:"confidence"`
}

type forecastRespPoint struct {
	Period   string  `json:"period"`
	Estimate float64 `json:"estimate"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

type forecastResp struct {
	Points []forecastRespPoint `json:"points"`
}

func (f *HTTPForecaster) FitAndForecast(ctx context.Context, series models.QuarterSeries, horizon int, cfg models.ForecastConfig) (models.ForecastResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(series) < minHistory {
		return nil, ErrInsufficientData
	}

	req := forecastReq{
		Series:                 make([]forecastReqPoint, 0, len(series)),
		Horizon:                horizon,
		ChangepointSensitivity: cfg.ChangepointSensitivity,
		Confidence:             cfg.Confidence,
	}
	for _, p := range series {
		req.Series = append(req.Series, forecastReqPoint{Period: p.Period.Format("2006-01-02"), Count: p.Count})
	}

	var fr forecastResp
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     f.baseURL + "/forecast/quarterly",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &fr)
	if err != nil {
		return nil, fmt.Errorf("post forecast: %w", err)
	}

	if len(fr.Points) != len(series)+horizon {
		return nil, fmt.Errorf("forecast: service returned %d points, want %d", len(fr.Points), len(series)+horizon)
	}

	result := make(models.ForecastResult, 0, len(fr.Points))
	for _, p := range fr.Points {
		period, ok := util.ParseDate(p.Period)
		if !ok {
			return nil, fmt.Errorf("forecast: unparseable period %q", p.Period)
		}
		if p.Lower > p.Estimate || p.Estimate > p.Upper {
			return nil, fmt.Errorf("forecast: bounds out of order at %s", p.Period)
		}
		result = append(result, models.ForecastPoint{
			Period:   period,
			Estimate: p.Estimate,
			Lower:    p.Lower,
			Upper:    p.Upper,
		})
	}
	return result, nil
}

var _ domsvc.Forecaster = (*HTTPForecaster)(nil)
