package trials

import (
	"context"
	"fmt"
	"time"

	"PharmaWatch/internal/domain/models"
	domsvc "PharmaWatch/internal/domain/service"
	srcmetrics "PharmaWatch/internal/service/metrics"
	"PharmaWatch/internal/service/ratelimit"
	"PharmaWatch/pkg/config"
	xhttp "PharmaWatch/pkg/http"
	applogger "PharmaWatch/pkg/logger"
)

const defaultPageSize = 100

// Client fetches study records from the ClinicalTrials.gov v2 API.
type Client struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rps     float64
	logger  *applogger.Logger
}

func New(cfg *config.Config, logger *applogger.Logger) *Client {
	srcmetrics.Register()
	timeout := cfg.Sources.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.Sources.ClinicalTrialsURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		rps:     cfg.Sources.RequestsPerSecond,
		logger:  logger,
	}
}

// studiesResponse mirrors the slice of the v2 payload we consume. The API
// nests everything under protocolSection modules.
type studiesResponse struct {
	Studies []struct {
		ProtocolSection struct {
			IdentificationModule struct {
				NCTID      string `json:"nctId"`
				BriefTitle string `json:"briefTitle"`
			} `json:"identificationModule"`
			StatusModule struct {
				OverallStatus string `json:"overallStatus"`
				StartDate     struct {
					Date string `json:"date"`
				} `json:"startDateStruct"`
				CompletionDate struct {
					Date string `json:"date"`
				} `json:"completionDateStruct"`
			} `json:"statusModule"`
			DesignModule struct {
				Phases         []string `json:"phases"`
				EnrollmentInfo struct {
					Count int `json:"count"`
				} `json:"enrollmentInfo"`
			} `json:"designModule"`
		} `json:"protocolSection"`
	} `json:"studies"`
}

// FetchStudies returns up to one page of studies matching the product term.
func (c *Client) FetchStudies(ctx context.Context, product string) ([]models.ClinicalTrial, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	var resp studiesResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"query.term": {product},
			"format":     {"json"},
			"pageSize":   {fmt.Sprintf("%d", defaultPageSize)},
		},
	}, &resp)
	srcmetrics.SourceLatency.WithLabelValues("clinicaltrials").Observe(time.Since(start).Seconds())
	if err != nil {
		srcmetrics.SourceErrors.WithLabelValues("clinicaltrials").Inc()
		return nil, fmt.Errorf("clinicaltrials studies: %w", err)
	}

	out := make([]models.ClinicalTrial, 0, len(resp.Studies))
	for _, s := range resp.Studies {
		ps := s.ProtocolSection
		phase := ""
		if len(ps.DesignModule.Phases) > 0 {
			phase = ps.DesignModule.Phases[0]
		}
		out = append(out, models.ClinicalTrial{
			NCTID:          ps.IdentificationModule.NCTID,
			Title:          ps.IdentificationModule.BriefTitle,
			Status:         ps.StatusModule.OverallStatus,
			StartDate:      ps.StatusModule.StartDate.Date,
			CompletionDate: ps.StatusModule.CompletionDate.Date,
			Phase:          phase,
			Enrollment:     ps.DesignModule.EnrollmentInfo.Count,
		})
	}

	c.logger.Info("clinicaltrials studies fetched",
		applogger.String("product", product),
		applogger.Int("studies", len(out)),
	)
	return out, nil
}

func (c *Client) throttle(ctx context.Context) error {
	for !c.limiter.Allow("clinicaltrials", c.rps, c.rps) {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

var _ domsvc.TrialSource = (*Client)(nil)
