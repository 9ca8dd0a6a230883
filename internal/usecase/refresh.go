package usecase

import (
	"context"
	"sync"
	"time"

	"PharmaWatch/internal/domain/models"
	domrepo "PharmaWatch/internal/domain/repository"
	domsvc "PharmaWatch/internal/domain/service"
	icache "PharmaWatch/internal/service/cache"
	pkgcache "PharmaWatch/pkg/cache"
	applogger "PharmaWatch/pkg/logger"
)

// Notifier pushes completed bundles to live listeners (the websocket feed).
type Notifier interface {
	NotifyRun(bundle *models.MonitorBundle)
}

// Refresher owns one full monitoring pass over all configured products:
// fetch raw events, run the per-product pipeline, replace the cached results
// wholesale, and hand the derived tables to the optional persistence and
// alerting collaborators. Collaborator failures are logged and counted; they
// never fail the run.
type Refresher struct {
	products []string
	cfg      MonitorConfig

	events  domsvc.EventSource
	monitor *Monitor
	results *icache.ResultStore
	logger  *applogger.Logger
	metrics domrepo.Metrics

	reactions domsvc.ReactionSource
	trials    domsvc.TrialSource
	store     domrepo.RunStore
	alerts    domrepo.AlertPublisher
	notifier  Notifier
	locks     pkgcache.Service

	mu         sync.Mutex
	lastUpdate time.Time
}

func NewRefresher(
	products []string,
	cfg MonitorConfig,
	events domsvc.EventSource,
	monitor *Monitor,
	results *icache.ResultStore,
	logger *applogger.Logger,
	metrics domrepo.Metrics,
) *Refresher {
	return &Refresher{
		products: products,
		cfg:      cfg,
		events:   events,
		monitor:  monitor,
		results:  results,
		logger:   logger,
		metrics:  metrics,
	}
}

// SetAuxSources injects the optional reaction and trial collectors.
func (r *Refresher) SetAuxSources(reactions domsvc.ReactionSource, trials domsvc.TrialSource) {
	r.reactions = reactions
	r.trials = trials
}

// SetRunStore injects the optional persistence collaborator.
func (r *Refresher) SetRunStore(store domrepo.RunStore) { r.store = store }

// SetAlertPublisher injects the optional alerting collaborator.
func (r *Refresher) SetAlertPublisher(p domrepo.AlertPublisher) { r.alerts = p }

// SetNotifier injects the optional live-feed collaborator.
func (r *Refresher) SetNotifier(n Notifier) { r.notifier = n }

// SetLockService injects the optional cache-backed lock that keeps replicas
// from running the same full refresh at once.
func (r *Refresher) SetLockService(s pkgcache.Service) { r.locks = s }

// LastUpdate reports when the last full refresh finished; zero before the
// first one.
func (r *Refresher) LastUpdate() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUpdate
}

// Products returns the configured product list.
func (r *Refresher) Products() []string { return r.products }

// RefreshAll runs the pipeline for every configured product concurrently,
// then rebuilds the cross-product comparison from the runs' series.
func (r *Refresher) RefreshAll(ctx context.Context) {
	start := time.Now()

	if r.locks != nil {
		ok, err := r.locks.TryLock(ctx, "refresh:all", 30*time.Minute)
		if err != nil {
			r.logger.Warn("refresh lock unavailable, proceeding", applogger.Error(err))
		} else if !ok {
			r.logger.Info("refresh already running elsewhere, skipping")
			return
		} else {
			defer func() {
				if err := r.locks.Unlock(context.Background(), "refresh:all"); err != nil {
					r.logger.Warn("refresh unlock failed", applogger.Error(err))
				}
			}()
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	seriesByID := make(map[string]models.QuarterSeries, len(r.products))

	for _, product := range r.products {
		wg.Add(1)
		go func(product string) {
			defer wg.Done()
			bundle, err := r.RefreshProduct(ctx, product)
			if err != nil {
				r.logger.Error("product refresh failed",
					applogger.String("product", product),
					applogger.Error(err),
				)
				return
			}
			mu.Lock()
			seriesByID[product] = bundle.Series
			mu.Unlock()
		}(product)
	}
	wg.Wait()

	rows := r.monitor.CompareSeries(ctx, seriesByID)
	if err := r.results.PutComparison(rows); err != nil {
		r.logger.Error("cache comparison failed", applogger.Error(err))
		r.recordError("cache")
	}

	r.mu.Lock()
	r.lastUpdate = time.Now().UTC()
	r.mu.Unlock()

	r.logger.Info("refresh complete",
		applogger.Int("products", len(r.products)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if r.metrics != nil {
		r.metrics.RecordLatency("refresh_all", time.Since(start).Seconds())
	}
}

// RefreshProduct fetches and analyzes a single product, updating the cached
// bundle and the side-effect collaborators. Only the fetch itself can fail;
// everything downstream degrades.
func (r *Refresher) RefreshProduct(ctx context.Context, product string) (*models.MonitorBundle, error) {
	events, err := r.events.FetchEventCounts(ctx, product)
	if err != nil {
		r.recordError("fetch")
		return nil, err
	}

	bundle := r.monitor.Run(ctx, product, events, r.cfg)

	r.logger.Info("monitoring run complete",
		applogger.String("product", product),
		applogger.Int("quarters", len(bundle.Series)),
		applogger.Int("anomalies", len(bundle.Anomalies)),
		applogger.Int("signals", len(bundle.Signals)),
		applogger.Int("dropped", bundle.DroppedEvents),
		applogger.Bool("forecast", bundle.Forecast != nil),
	)

	if err := r.results.PutBundle(bundle); err != nil {
		r.logger.Error("cache bundle failed", applogger.String("product", product), applogger.Error(err))
		r.recordError("cache")
	}

	r.collectAux(ctx, product)

	if r.store != nil {
		if err := r.store.SaveRun(ctx, bundle); err != nil {
			r.logger.Error("persist run failed", applogger.String("product", product), applogger.Error(err))
			r.recordError("persist")
		}
	}

	if r.alerts != nil && len(bundle.Signals) > 0 {
		if err := r.alerts.PublishSignals(ctx, product, bundle.Signals); err != nil {
			r.logger.Error("publish signals failed", applogger.String("product", product), applogger.Error(err))
			r.recordError("publish")
		}
	}

	if r.notifier != nil {
		r.notifier.NotifyRun(bundle)
	}
	return bundle, nil
}

func (r *Refresher) collectAux(ctx context.Context, product string) {
	if r.reactions != nil {
		if rs, err := r.reactions.FetchTopReactions(ctx, product, 20); err != nil {
			r.logger.Warn("fetch reactions failed", applogger.String("product", product), applogger.Error(err))
			r.recordError("fetch_reactions")
		} else if err := r.results.PutReactions(product, rs); err != nil {
			r.recordError("cache")
		}
	}
	if r.trials != nil {
		if ts, err := r.trials.FetchStudies(ctx, product); err != nil {
			r.logger.Warn("fetch trials failed", applogger.String("product", product), applogger.Error(err))
			r.recordError("fetch_trials")
		} else if err := r.results.PutTrials(product, ts); err != nil {
			r.recordError("cache")
		}
	}
}

func (r *Refresher) recordError(kind string) {
	if r.metrics != nil {
		r.metrics.RecordError(kind)
	}
}
