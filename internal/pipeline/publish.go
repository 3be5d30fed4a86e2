package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
	"github.com/couchcryptid/argo-float-etl/internal/index"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
)

// BatchLoader writes multiple profile documents to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, docs []domain.ProfileDocument) error
}

const (
	publishAttempts   = 3
	initialBackoff    = 200 * time.Millisecond
	maxPublishBackoff = 5 * time.Second
)

// Publisher sends every profile of a built index downstream in batches.
// Publishing is best effort: a batch that still fails after retries is
// logged and dropped, and the index is served regardless.
type Publisher struct {
	loader    BatchLoader
	batchSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
	backoff   time.Duration
}

// NewPublisher creates a Publisher writing batchSize documents per call.
func NewPublisher(loader BatchLoader, batchSize int, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		loader:    loader,
		batchSize: max(batchSize, 1),
		logger:    logger,
		metrics:   metrics,
		backoff:   initialBackoff,
	}
}

// Publish writes all documents of idx and returns how many were accepted.
// It stops early only when ctx is cancelled.
func (p *Publisher) Publish(ctx context.Context, idx *index.Index) int {
	docs := idx.Documents()
	published := 0
	for start := 0; start < len(docs); start += p.batchSize {
		batch := docs[start:min(start+p.batchSize, len(docs))]
		if !p.loadWithRetry(ctx, batch) {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		published += len(batch)
		p.metrics.ProfilesPublished.Add(float64(len(batch)))
		p.metrics.PublishBatchSize.Observe(float64(len(batch)))
	}
	p.logger.Info("profiles published", "published", published, "total", len(docs))
	return published
}

func (p *Publisher) loadWithRetry(ctx context.Context, batch []domain.ProfileDocument) bool {
	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.metrics.PublishErrors.Inc()
		if attempt == publishAttempts {
			p.logger.Error("publish batch failed, dropping",
				"error", err,
				"batch_size", len(batch),
				"first_profile_id", batch[0].Profile.ProfileID,
			)
			return false
		}
		p.logger.Warn("publish batch failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxPublishBackoff)
	}
}
