package openfda

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PharmaWatch/internal/domain/models"
	domsvc "PharmaWatch/internal/domain/service"
	srcmetrics "PharmaWatch/internal/service/metrics"
	"PharmaWatch/internal/service/ratelimit"
	"PharmaWatch/pkg/config"
	xhttp "PharmaWatch/pkg/http"
	applogger "PharmaWatch/pkg/logger"
	"PharmaWatch/pkg/util"
)

// Client fetches adverse-event report data from the openFDA drug event API.
// It only performs count queries, never record-level pulls, so responses stay
// small regardless of how widely a product is reported.
type Client struct {
	baseURL   string
	startYear int
	endYear   int
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	rps       float64
	logger    *applogger.Logger
}

func New(cfg *config.Config, logger *applogger.Logger) *Client {
	srcmetrics.Register()
	timeout := cfg.Sources.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.Sources.OpenFDAURL,
		startYear: cfg.Sources.StartYear,
		endYear:   cfg.Sources.EndYear,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:   ratelimit.New(),
		rps:       cfg.Sources.RequestsPerSecond,
		logger:    logger,
	}
}

// countResult is one bucket of an openFDA count aggregation.
type countResult struct {
	Time  string `json:"time"`
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type countResponse struct {
	Results []countResult `json:"results"`
}

// FetchEventCounts returns per-receive-date report counts for a product.
// Unparseable dates are passed through with a zero timestamp so the
// normalizer can account for the drops.
func (c *Client) FetchEventCounts(ctx context.Context, product string) ([]models.RawEvent, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	search := fmt.Sprintf(`patient.drug.medicinalproduct:"%s" AND receivedate:[%d0101 TO %d1231]`,
		product, c.startYear, c.endYear)

	start := time.Now()
	var resp countResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"search": {search},
			"count":  {"receivedate"},
		},
	}, &resp)
	srcmetrics.SourceLatency.WithLabelValues("openfda").Observe(time.Since(start).Seconds())
	if err != nil {
		srcmetrics.SourceErrors.WithLabelValues("openfda").Inc()
		return nil, fmt.Errorf("openfda event counts: %w", err)
	}

	events := make([]models.RawEvent, 0, len(resp.Results))
	for _, r := range resp.Results {
		date, _ := util.ParseDate(r.Time)
		events = append(events, models.RawEvent{Date: date, Count: r.Count})
	}

	c.logger.Info("openfda event counts fetched",
		applogger.String("product", product),
		applogger.Int("buckets", len(events)),
	)
	return events, nil
}

// FetchTopReactions returns the most frequently reported reaction terms.
func (c *Client) FetchTopReactions(ctx context.Context, product string, limit int) ([]models.ReactionCount, error) {
	if limit <= 0 {
		limit = 20
	}
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	search := fmt.Sprintf(`patient.drug.medicinalproduct:"%s"`, product)

	start := time.Now()
	var resp countResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"search": {search},
			"count":  {"patient.reaction.reactionmeddrapt.exact"},
			"limit":  {fmt.Sprintf("%d", limit)},
		},
	}, &resp)
	srcmetrics.SourceLatency.WithLabelValues("openfda").Observe(time.Since(start).Seconds())
	if err != nil {
		srcmetrics.SourceErrors.WithLabelValues("openfda").Inc()
		return nil, fmt.Errorf("openfda reactions: %w", err)
	}

	out := make([]models.ReactionCount, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, models.ReactionCount{Reaction: r.Term, Count: r.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	c.logger.Info("openfda reactions fetched",
		applogger.String("product", product),
		applogger.Int("terms", len(out)),
	)
	return out, nil
}

// throttle blocks until the shared token bucket admits another request, or
// the context ends.
func (c *Client) throttle(ctx context.Context) error {
	for !c.limiter.Allow("openfda", c.rps, c.rps) {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

var (
	_ domsvc.EventSource    = (*Client)(nil)
	_ domsvc.ReactionSource = (*Client)(nil)
)
