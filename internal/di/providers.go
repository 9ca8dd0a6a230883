package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"PharmaWatch/internal/domain/models"
	domrepo "PharmaWatch/internal/domain/repository"
	domsvc "PharmaWatch/internal/domain/service"
	"PharmaWatch/internal/handler/api"
	"PharmaWatch/internal/handler/ws"
	internalrepo "PharmaWatch/internal/repository"
	icache "PharmaWatch/internal/service/cache"
	"PharmaWatch/internal/service/openfda"
	"PharmaWatch/internal/service/trials"
	"PharmaWatch/internal/services/forecast"
	"PharmaWatch/internal/usecase"
	pkgcache "PharmaWatch/pkg/cache"
	pkgch "PharmaWatch/pkg/clickhouse"
	"PharmaWatch/pkg/config"
	pkgkafka "PharmaWatch/pkg/kafka"
	applogger "PharmaWatch/pkg/logger"
	"PharmaWatch/pkg/metrics"
	"PharmaWatch/pkg/queue"
	"PharmaWatch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" || cfg.Environment == "test" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideForecaster picks the estimator by config: the built-in seasonal
// trend model or the external model service.
func ProvideForecaster(cfg *config.Config) domsvc.Forecaster {
	if cfg.Forecast.Mode == "http" {
		return forecast.NewHTTPForecaster(cfg)
	}
	return forecast.NewSeasonalTrend()
}

// ProvideEventSource creates the openFDA collector.
func ProvideEventSource(cfg *config.Config, logger *applogger.Logger) *openfda.Client {
	return openfda.New(cfg, logger)
}

// ProvideTrialSource creates the ClinicalTrials.gov collector.
func ProvideTrialSource(cfg *config.Config, logger *applogger.Logger) *trials.Client {
	return trials.New(cfg, logger)
}

// ProvideResultStore builds the latest-run cache, Redis-backed when enabled.
func ProvideResultStore(cfg *config.Config) *icache.ResultStore {
	var bc icache.BytesCache
	if cfg.Cache.Redis.Enabled {
		bc = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	} else {
		bc = icache.NewTTLCache()
	}
	return icache.NewResultStore(bc, cfg.Cache.TTL)
}

// ProvideMonitorConfig maps the YAML tuning onto the orchestrator config.
func ProvideMonitorConfig(cfg *config.Config) usecase.MonitorConfig {
	return usecase.MonitorConfig{
		ZThreshold:          cfg.Monitor.ZThreshold,
		MinAbsoluteIncrease: cfg.Monitor.MinAbsoluteIncrease,
		ForecastHorizon:     cfg.Monitor.ForecastHorizon,
		Forecast: models.ForecastConfig{
			ChangepointSensitivity: cfg.Monitor.ChangepointSensitivity,
			Confidence:             cfg.Monitor.Confidence,
		},
	}
}

// ProvideMonitor creates the per-product orchestrator.
func ProvideMonitor(forecaster domsvc.Forecaster, m domrepo.Metrics) *usecase.Monitor {
	return usecase.NewMonitor(forecaster, m)
}

// ProvideRunStore creates the ClickHouse run store, or nil when persistence
// is disabled.
func ProvideRunStore(cfg *config.Config, logger *applogger.Logger) (domrepo.RunStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewClickHouseRunStore(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideAlertPublisher creates the Kafka signal publisher, or nil when
// alerting is disabled.
func ProvideAlertPublisher(cfg *config.Config, logger *applogger.Logger) (domrepo.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic, logger), nil
}

// ProvideBroadcaster creates the websocket live feed.
func ProvideBroadcaster(logger *applogger.Logger) *ws.Broadcaster {
	return ws.NewBroadcaster(logger)
}

// ProvideRefresher assembles the refresh pipeline with its optional
// collaborators attached.
func ProvideRefresher(
	cfg *config.Config,
	mcfg usecase.MonitorConfig,
	events *openfda.Client,
	trialSrc *trials.Client,
	monitor *usecase.Monitor,
	results *icache.ResultStore,
	logger *applogger.Logger,
	m domrepo.Metrics,
	store domrepo.RunStore,
	alerts domrepo.AlertPublisher,
	feed *ws.Broadcaster,
) *usecase.Refresher {
	r := usecase.NewRefresher(cfg.AllProducts(), mcfg, events, monitor, results, logger, m)
	r.SetAuxSources(events, trialSrc)
	if store != nil {
		r.SetRunStore(store)
	}
	if alerts != nil {
		r.SetAlertPublisher(alerts)
	}
	r.SetNotifier(feed)

	if cfg.Cache.Redis.Enabled {
		locks, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(redisHost(cfg.Cache.Redis.Addr)),
			pkgcache.WithRedisPort(redisPort(cfg.Cache.Redis.Addr)),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			logger.Warn("redis lock service unavailable", applogger.Error(err))
		} else {
			r.SetLockService(locks)
		}
	} else {
		r.SetLockService(pkgcache.NewMemoryCache())
	}
	return r
}

// ProvideJobQueue creates the Redis-backed background queue for /update and
// registers the refresh job, or returns nil when Redis is disabled.
func ProvideJobQueue(cfg *config.Config, logger *applogger.Logger, refresher *usecase.Refresher) *queue.RedisQueue {
	if !cfg.Cache.Redis.Enabled {
		return nil
	}
	client := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	}).Client()

	q := queue.NewRedisQueue(logger, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 2,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewRefreshJob(refresher))
	return q
}

// ProvideMonitorHandler creates the Echo API handler.
func ProvideMonitorHandler(
	cfg *config.Config,
	results *icache.ResultStore,
	refresher *usecase.Refresher,
	logger *applogger.Logger,
	jobs *queue.RedisQueue,
	store domrepo.RunStore,
) *api.MonitorHandler {
	h := api.NewMonitorHandler(cfg.AllProducts()[0], results, refresher, logger)
	if jobs != nil {
		h.SetJobQueue(jobs)
	}
	if store != nil {
		h.SetStoreHealth(store)
	}
	return h
}

func redisHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func redisPort(addr string) int {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 6379
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	refresher *usecase.Refresher,
	handler *api.MonitorHandler,
	feed *ws.Broadcaster,
	jobs *queue.RedisQueue,
	store domrepo.RunStore,
	alerts domrepo.AlertPublisher,
) *server.App {
	return server.New(cfg, logger, refresher, handler, feed, jobs, store, alerts)
}
