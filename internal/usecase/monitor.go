package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"PharmaWatch/internal/domain/models"
	domrepo "PharmaWatch/internal/domain/repository"
	domsvc "PharmaWatch/internal/domain/service"
	"PharmaWatch/internal/services/forecast"
	"PharmaWatch/internal/services/timeseries"
)

// MonitorConfig is the run-scoped tuning for one monitoring pass.
type MonitorConfig struct {
	ZThreshold          float64
	MinAbsoluteIncrease int
	ForecastHorizon     int
	Forecast            models.ForecastConfig
}

// DefaultMonitorConfig mirrors the operational defaults.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		ZThreshold:          2.0,
		MinAbsoluteIncrease: 10,
		ForecastHorizon:     4,
		Forecast: models.ForecastConfig{
			ChangepointSensitivity: 0.05,
			Confidence:             0.95,
		},
	}
}

// Monitor drives one analysis run for one product: normalize, then the two
// detectors and the forecaster concurrently (they all read the same immutable
// series), then the summary over whatever forecast came back.
type Monitor struct {
	forecaster domsvc.Forecaster
	metrics    domrepo.Metrics
}

func NewMonitor(forecaster domsvc.Forecaster, metrics domrepo.Metrics) *Monitor {
	return &Monitor{forecaster: forecaster, metrics: metrics}
}

// Run never fails: the worst outcome is a bundle with empty analysis and the
// reasons recorded in Errors. A missing forecast is a degraded result, not a
// failure.
func (m *Monitor) Run(ctx context.Context, product string, events []models.RawEvent, cfg MonitorConfig) *models.MonitorBundle {
	start := time.Now()
	series, dropped := timeseries.Normalize(events)

	bundle := &models.MonitorBundle{
		Product:       product,
		Series:        series,
		DroppedEvents: dropped,
		GeneratedAt:   time.Now().UTC(),
		Errors:        map[string]string{},
	}

	if series.Empty() {
		bundle.Summary = models.SummaryDigest{}
		m.observe(product, bundle, len(events), time.Since(start))
		return bundle
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"anomalies", timeseries.DetectAnomalies(series, cfg.ZThreshold), nil}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"signals", timeseries.DetectSignals(series, cfg.MinAbsoluteIncrease), nil}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := m.forecaster.FitAndForecast(ctx, series, cfg.ForecastHorizon, cfg.Forecast)
		ch <- item{"forecast", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			if errors.Is(it.err, forecast.ErrInsufficientData) {
				bundle.Errors[it.name] = "insufficient data"
			} else {
				bundle.Errors[it.name] = it.err.Error()
			}
			continue
		}
		switch it.name {
		case "anomalies":
			bundle.Anomalies = it.val.([]models.AnomalyRecord)
		case "signals":
			bundle.Signals = it.val.([]models.SignalRecord)
		case "forecast":
			bundle.Forecast = it.val.(models.ForecastResult)
		}
	}

	bundle.Summary = timeseries.Summarize(series, bundle.Forecast)

	if len(bundle.Errors) == 0 {
		bundle.Errors = nil
	}
	m.observe(product, bundle, len(events), time.Since(start))
	return bundle
}

// CompareProducts normalizes each product's raw events and ranks them.
// Independent of the per-product pipeline.
func (m *Monitor) CompareProducts(_ context.Context, eventsByProduct map[string][]models.RawEvent) []models.ComparisonRow {
	seriesByID := make(map[string]models.QuarterSeries, len(eventsByProduct))
	for id, events := range eventsByProduct {
		series, _ := timeseries.Normalize(events)
		seriesByID[id] = series
	}
	return timeseries.Compare(seriesByID)
}

// CompareSeries ranks already-normalized series.
func (m *Monitor) CompareSeries(_ context.Context, seriesByID map[string]models.QuarterSeries) []models.ComparisonRow {
	return timeseries.Compare(seriesByID)
}

func (m *Monitor) observe(product string, bundle *models.MonitorBundle, ingested int, dur time.Duration) {
	if m.metrics == nil {
		return
	}
	result := "ok"
	if len(bundle.Errors) > 0 {
		result = "degraded"
	}
	m.metrics.RecordRun(product, result)
	m.metrics.RecordEventsIngested(product, ingested)
	m.metrics.RecordDroppedEvents(product, bundle.DroppedEvents)
	m.metrics.RecordAnomalies(product, len(bundle.Anomalies))
	m.metrics.RecordSignals(product, len(bundle.Signals))
	m.metrics.RecordLatency("monitor_run", dur.Seconds())
}
