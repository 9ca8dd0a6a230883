package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"PharmaWatch/internal/domain/models"
	icache "PharmaWatch/internal/service/cache"
	"PharmaWatch/internal/usecase"
	xhttp "PharmaWatch/pkg/http"
	applogger "PharmaWatch/pkg/logger"
	"PharmaWatch/pkg/queue"
)

// HealthChecker reports readiness of a backing store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// MonitorHandler serves the latest cached analysis over Echo. All read
// endpoints hit the result store only; a refresh never blocks a reader.
type MonitorHandler struct {
	defaultProduct string
	results        *icache.ResultStore
	refresher      *usecase.Refresher
	jobs           queue.QueueService
	storeHealth    HealthChecker
	logger         *applogger.Logger
}

func NewMonitorHandler(
	defaultProduct string,
	results *icache.ResultStore,
	refresher *usecase.Refresher,
	logger *applogger.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		defaultProduct: defaultProduct,
		results:        results,
		refresher:      refresher,
		logger:         logger,
	}
}

// SetJobQueue injects the optional background queue for /update.
func (h *MonitorHandler) SetJobQueue(q queue.QueueService) { h.jobs = q }

// SetStoreHealth injects the optional persistence health probe.
func (h *MonitorHandler) SetStoreHealth(hc HealthChecker) { h.storeHealth = hc }

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/status", h.Status)

	g := e.Group("/api")
	g.GET("/summary", h.Summary)
	g.GET("/series", h.Series)
	g.GET("/anomalies", h.Anomalies)
	g.GET("/signals", h.Signals)
	g.GET("/forecast", h.Forecast)
	g.GET("/comparison", h.Comparison)
	g.GET("/reactions", h.Reactions)
	g.GET("/trials", h.Trials)

	e.POST("/update", h.Update)
}

func (h *MonitorHandler) Health(c echo.Context) error {
	if h.storeHealth != nil {
		if err := h.storeHealth.Health(c.Request().Context()); err != nil {
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"store":  err.Error(),
			})
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *MonitorHandler) Status(c echo.Context) error {
	products := h.refresher.Products()
	ready := 0
	for _, p := range products {
		if _, ok, _ := h.results.GetBundle(p); ok {
			ready++
		}
	}
	var last *time.Time
	if t := h.refresher.LastUpdate(); !t.IsZero() {
		last = &t
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"products":       products,
		"products_ready": ready,
		"last_update":    last,
	})
}

func (h *MonitorHandler) Summary(c echo.Context) error {
	req := new(models.ProductRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	bundle, err := h.bundle(c, req.Product)
	if bundle == nil {
		return err
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"product":        bundle.Product,
		"summary":        bundle.Summary,
		"dropped_events": bundle.DroppedEvents,
		"generated_at":   bundle.GeneratedAt,
		"errors":         bundle.Errors,
	})
}

func (h *MonitorHandler) Series(c echo.Context) error {
	req := new(models.SeriesRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	bundle, err := h.bundle(c, req.Product)
	if bundle == nil {
		return err
	}
	series := bundle.Series
	if req.Last > 0 && req.Last < len(series) {
		series = series[len(series)-req.Last:]
	}
	return xhttp.ListResponse(c, series, int64(len(bundle.Series)))
}

func (h *MonitorHandler) Anomalies(c echo.Context) error {
	req := new(models.ProductRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	bundle, err := h.bundle(c, req.Product)
	if bundle == nil {
		return err
	}
	return xhttp.ListResponse(c, bundle.Anomalies, int64(len(bundle.Anomalies)))
}

func (h *MonitorHandler) Signals(c echo.Context) error {
	req := new(models.ProductRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	bundle, err := h.bundle(c, req.Product)
	if bundle == nil {
		return err
	}
	return xhttp.ListResponse(c, bundle.Signals, int64(len(bundle.Signals)))
}

func (h *MonitorHandler) Forecast(c echo.Context) error {
	req := new(models.ProductRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	bundle, err := h.bundle(c, req.Product)
	if bundle == nil {
		return err
	}
	if bundle.Forecast == nil {
		return xhttp.NotFoundResponse(c, map[string]string{
			"product": bundle.Product,
			"reason":  bundle.Errors["forecast"],
		})
	}
	return xhttp.ListResponse(c, bundle.Forecast, int64(len(bundle.Forecast)))
}

func (h *MonitorHandler) Comparison(c echo.Context) error {
	rows, ok, err := h.results.GetComparison()
	if err != nil {
		h.logger.Error("read comparison failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{"reason": "no completed run yet"})
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *MonitorHandler) Reactions(c echo.Context) error {
	req := new(models.ReactionsRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	product := h.product(req.Product)
	rs, ok, err := h.results.GetReactions(product)
	if err != nil {
		h.logger.Error("read reactions failed", applogger.String("product", product), applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{"product": product})
	}
	if req.Limit < len(rs) {
		rs = rs[:req.Limit]
	}
	return xhttp.ListResponse(c, rs, int64(len(rs)))
}

func (h *MonitorHandler) Trials(c echo.Context) error {
	req := new(models.ProductRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	product := h.product(req.Product)
	ts, ok, err := h.results.GetTrials(product)
	if err != nil {
		h.logger.Error("read trials failed", applogger.String("product", product), applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{"product": product})
	}
	return xhttp.ListResponse(c, ts, int64(len(ts)))
}

// Update triggers a background refresh. With a queue configured the request
// is durable; without one it runs in-process.
func (h *MonitorHandler) Update(c echo.Context) error {
	req := new(models.UpdateRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	if h.jobs != nil {
		if err := h.jobs.PublishMessage(c.Request().Context(), usecase.RefreshJobType, req); err != nil {
			h.logger.Error("enqueue refresh failed", applogger.Error(err))
			return xhttp.InternalServerErrorResponse(c)
		}
	} else {
		go func(product string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if product == "" {
				h.refresher.RefreshAll(ctx)
				return
			}
			if _, err := h.refresher.RefreshProduct(ctx, product); err != nil {
				h.logger.Error("background refresh failed",
					applogger.String("product", product), applogger.Error(err))
			}
		}(req.Product)
	}

	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{
		"status":  "scheduled",
		"product": req.Product,
	})
}

// bundle resolves the product default and loads its cached bundle, writing
// the error response itself when the bundle is unavailable.
func (h *MonitorHandler) bundle(c echo.Context, product string) (*models.MonitorBundle, error) {
	product = h.product(product)
	bundle, ok, err := h.results.GetBundle(product)
	if err != nil {
		h.logger.Error("read bundle failed", applogger.String("product", product), applogger.Error(err))
		return nil, xhttp.InternalServerErrorResponse(c)
	}
	if !ok {
		return nil, xhttp.NotFoundResponse(c, map[string]string{"product": product})
	}
	return bundle, nil
}

func (h *MonitorHandler) product(p string) string {
	if p == "" {
		return h.defaultProduct
	}
	return p
}

var _ xhttp.Handler = (*MonitorHandler)(nil)
