package repository

import (
	"context"

	"PharmaWatch/internal/domain/models"
)

// RunStore persists the derived tables of a completed monitoring run.
type RunStore interface {
	Init(ctx context.Context) error // ensure tables exist
	SaveRun(ctx context.Context, bundle *models.MonitorBundle) error
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher hands flagged safety signals to downstream consumers.
type AlertPublisher interface {
	PublishSignals(ctx context.Context, product string, signals []models.SignalRecord) error
	Close() error
}

// Metrics records operational counters for monitoring runs.
type Metrics interface {
	RecordRun(product, result string)
	RecordEventsIngested(product string, n int)
	RecordDroppedEvents(product string, n int)
	RecordAnomalies(product string, n int)
	RecordSignals(product string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
