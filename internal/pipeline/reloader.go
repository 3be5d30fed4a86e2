package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/argo-float-etl/internal/observability"
)

// Reloader rebuilds the index from scratch and swaps it into a Holder.
type Reloader struct {
	ingester  *Ingester
	holder    *Holder
	publisher *Publisher // nil disables publishing
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewReloader creates a Reloader. publisher may be nil.
func NewReloader(ingester *Ingester, holder *Holder, publisher *Publisher, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Reloader {
	return &Reloader{
		ingester:  ingester,
		holder:    holder,
		publisher: publisher,
		clock:     clock,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Reload runs one ingestion and, on success, serves its result. On failure
// the previous index keeps serving.
func (r *Reloader) Reload(ctx context.Context) (Report, error) {
	idx, rep, err := r.ingester.Ingest(ctx)
	if err != nil {
		return rep, err
	}
	r.holder.Swap(idx)
	r.metrics.IndexBuiltAt.Set(float64(idx.BuiltAt().Unix()))

	if r.publisher != nil {
		r.publisher.Publish(ctx, idx)
	}
	return rep, nil
}

// Run reloads every interval until ctx is cancelled. A zero interval
// returns immediately.
func (r *Reloader) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return nil
	}
	r.logger.Info("reloader started", "interval", r.interval)
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reloader stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if _, err := r.Reload(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("reingest failed, keeping previous index", "error", err)
			}
		}
	}
}
