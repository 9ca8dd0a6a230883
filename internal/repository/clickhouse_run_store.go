package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"PharmaWatch/internal/domain/models"
	domrepo "PharmaWatch/internal/domain/repository"
	"PharmaWatch/pkg/clickhouse"
	applogger "PharmaWatch/pkg/logger"
)

// schema statements are idempotent; Init runs them on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS quarter_counts (
		product       LowCardinality(String),
		period        Date,
		report_count  UInt32,
		run_at        DateTime
	) ENGINE = ReplacingMergeTree(run_at)
	ORDER BY (product, period)`,

	`CREATE TABLE IF NOT EXISTS anomalies (
		product       LowCardinality(String),
		period        Date,
		report_count  UInt32,
		rolling_mean  Float64,
		rolling_std   Float64,
		z_score       Float64,
		run_at        DateTime
	) ENGINE = ReplacingMergeTree(run_at)
	ORDER BY (product, period)`,

	`CREATE TABLE IF NOT EXISTS signals (
		product         LowCardinality(String),
		period          Date,
		report_count    UInt32,
		absolute_change Int32,
		percent_change  Nullable(Float64),
		run_at          DateTime
	) ENGINE = ReplacingMergeTree(run_at)
	ORDER BY (product, period)`,
}

// ClickHouseRunStore persists each run's derived tables for offline analysis.
type ClickHouseRunStore struct {
	client *clickhouse.Client
	logger *applogger.Logger
}

func NewClickHouseRunStore(client *clickhouse.Client, logger *applogger.Logger) *ClickHouseRunStore {
	return &ClickHouseRunStore{client: client, logger: logger}
}

func (s *ClickHouseRunStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, schemaStatements)
}

// SaveRun writes the series, anomalies and signals of one bundle in a single
// transaction. The replacing engine keyed on run_at keeps the latest run per
// (product, period).
func (s *ClickHouseRunStore) SaveRun(ctx context.Context, bundle *models.MonitorBundle) error {
	if bundle == nil || bundle.Series.Empty() {
		return nil
	}
	runAt := bundle.GeneratedAt.UTC()

	tx, err := s.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO quarter_counts (product, period, report_count, run_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare quarter_counts: %w", err)
	}
	for _, p := range bundle.Series {
		if _, err := stmt.ExecContext(ctx, bundle.Product, p.Period, uint32(p.Count), runAt); err != nil {
			stmt.Close()
			return fmt.Errorf("insert quarter_counts: %w", err)
		}
	}
	stmt.Close()

	stmt, err = tx.PrepareContext(ctx,
		"INSERT INTO anomalies (product, period, report_count, rolling_mean, rolling_std, z_score, run_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare anomalies: %w", err)
	}
	for _, a := range bundle.Anomalies {
		if _, err := stmt.ExecContext(ctx, bundle.Product, a.Period, uint32(a.Count), a.RollingMean, a.RollingStd, a.ZScore, runAt); err != nil {
			stmt.Close()
			return fmt.Errorf("insert anomalies: %w", err)
		}
	}
	stmt.Close()

	stmt, err = tx.PrepareContext(ctx,
		"INSERT INTO signals (product, period, report_count, absolute_change, percent_change, run_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare signals: %w", err)
	}
	for _, sig := range bundle.Signals {
		var pct *float64
		if !math.IsInf(sig.PercentChange, 0) {
			v := sig.PercentChange
			pct = &v
		}
		if _, err := stmt.ExecContext(ctx, bundle.Product, sig.Period, uint32(sig.Count), int32(sig.AbsoluteChange), pct, runAt); err != nil {
			stmt.Close()
			return fmt.Errorf("insert signals: %w", err)
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("run persisted",
		applogger.String("product", bundle.Product),
		applogger.Int("quarters", len(bundle.Series)),
		applogger.Int("anomalies", len(bundle.Anomalies)),
		applogger.Int("signals", len(bundle.Signals)),
	)
	return nil
}

func (s *ClickHouseRunStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Health(ctx)
}

func (s *ClickHouseRunStore) Close() error {
	return s.client.Close()
}

var _ domrepo.RunStore = (*ClickHouseRunStore)(nil)
