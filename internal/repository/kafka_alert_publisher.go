package repository

import (
	"context"
	"time"

	"PharmaWatch/internal/domain/models"
	domrepo "PharmaWatch/internal/domain/repository"
	"PharmaWatch/pkg/kafka"
	applogger "PharmaWatch/pkg/logger"
)

// signalAlert is the wire shape of one published safety-signal alert.
type signalAlert struct {
	Product    string              `json:"product"`
	Signal     models.SignalRecord `json:"signal"`
	DetectedAt time.Time           `json:"detected_at"`
}

// KafkaAlertPublisher pushes flagged signals onto an alert topic, keyed by
// product so downstream consumers see per-product ordering.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *applogger.Logger
}

func NewKafkaAlertPublisher(producer *kafka.Producer, topic string, logger *applogger.Logger) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaAlertPublisher) PublishSignals(ctx context.Context, product string, signals []models.SignalRecord) error {
	if len(signals) == 0 {
		return nil
	}

	now := time.Now().UTC()
	msgs := make([]kafka.Message, 0, len(signals))
	for _, s := range signals {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(product),
			Value: signalAlert{Product: product, Signal: s, DetectedAt: now},
		})
	}

	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return err
	}
	p.logger.Info("signal alerts published",
		applogger.String("product", product),
		applogger.String("topic", p.topic),
		applogger.Int("signals", len(signals)),
	)
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)
