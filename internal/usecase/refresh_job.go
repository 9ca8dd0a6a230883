package usecase

import (
	"context"
	"fmt"

	"PharmaWatch/internal/domain/models"
	"PharmaWatch/pkg/queue"
)

// RefreshJobType is the queue message type for background refresh requests.
const RefreshJobType = "monitor.refresh"

// RefreshJob runs queued refresh requests. An empty product means a full
// pass over every configured product.
type RefreshJob struct {
	refresher *Refresher
}

func NewRefreshJob(refresher *Refresher) *RefreshJob {
	return &RefreshJob{refresher: refresher}
}

func (j *RefreshJob) Name() string { return "refresh" }
func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.UpdateRequest](payload)
	if err != nil {
		return fmt.Errorf("parse refresh payload: %w", err)
	}
	if req.Product == "" {
		j.refresher.RefreshAll(ctx)
		return nil
	}
	_, err = j.refresher.RefreshProduct(ctx, req.Product)
	return err
}

var _ queue.Job = (*RefreshJob)(nil)
