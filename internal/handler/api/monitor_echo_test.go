package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"PharmaWatch/internal/domain/models"
	icache "PharmaWatch/internal/service/cache"
	"PharmaWatch/internal/services/forecast"
	"PharmaWatch/internal/usecase"
	applogger "PharmaWatch/pkg/logger"
)

type stubEvents struct{}

func (stubEvents) FetchEventCounts(context.Context, string) ([]models.RawEvent, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) (*MonitorHandler, *icache.ResultStore) {
	t.Helper()
	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	results := icache.NewResultStore(icache.NewTTLCache(), time.Minute)
	monitor := usecase.NewMonitor(forecast.NewSeasonalTrend(), nil)
	refresher := usecase.NewRefresher([]string{"semaglutide"}, usecase.DefaultMonitorConfig(),
		stubEvents{}, monitor, results, logger, nil)
	return NewMonitorHandler("semaglutide", results, refresher, logger), results
}

func seedBundle(t *testing.T, results *icache.ResultStore) {
	t.Helper()
	err := results.PutBundle(&models.MonitorBundle{
		Product: "semaglutide",
		Series: models.QuarterSeries{
			{Period: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Count: 5},
			{Period: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), Count: 40},
		},
		Signals: []models.SignalRecord{
			{Period: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), Count: 40, AbsoluteChange: 35, PercentChange: 700},
		},
		Summary:     models.SummaryDigest{"total_reports": 45},
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func do(h echo.HandlerFunc, target string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestSummaryDefaultsToTargetProduct(t *testing.T) {
	h, results := newTestHandler(t)
	seedBundle(t, results)

	rec, err := do(h.Summary, "/api/summary")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var resp struct {
		Data struct {
			Product string                 `json:"product"`
			Summary map[string]interface{} `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Product != "semaglutide" {
		t.Fatalf("product %q", resp.Data.Product)
	}
	if resp.Data.Summary["total_reports"] != float64(45) {
		t.Fatalf("summary %v", resp.Data.Summary)
	}
}

func TestSummaryUnknownProductIsNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, err := do(h.Summary, "/api/summary?product=unknown")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("status %d", resp.Status)
	}
}

func TestSeriesLastWindow(t *testing.T) {
	h, results := newTestHandler(t)
	seedBundle(t, results)

	rec, err := do(h.Series, "/api/series?product=semaglutide&last=1")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var resp struct {
		Data struct {
			Rows  []models.QuarterPoint `json:"rows"`
			Total int64                 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Rows) != 1 || resp.Data.Rows[0].Count != 40 {
		t.Fatalf("rows %v", resp.Data.Rows)
	}
	if resp.Data.Total != 2 {
		t.Fatalf("total %d", resp.Data.Total)
	}
}

func TestSignalsSerializeFiniteChange(t *testing.T) {
	h, results := newTestHandler(t)
	seedBundle(t, results)

	rec, err := do(h.Signals, "/api/signals")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var resp struct {
		Data struct {
			Rows []models.SignalRecord `json:"rows"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Rows) != 1 || resp.Data.Rows[0].PercentChange != 700 {
		t.Fatalf("rows %v", resp.Data.Rows)
	}
}

func TestStatusBeforeFirstRun(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, err := do(h.Status, "/status")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var resp struct {
		Data struct {
			Products      []string   `json:"products"`
			ProductsReady int        `json:"products_ready"`
			LastUpdate    *time.Time `json:"last_update"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ProductsReady != 0 || resp.Data.LastUpdate != nil {
		t.Fatalf("status %+v", resp.Data)
	}
}
