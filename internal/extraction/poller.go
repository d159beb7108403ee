package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/loadextract/internal/documents"
)

// Processor handles one claimed document.
type Processor interface {
	Process(ctx context.Context, claim *documents.Claim) error
}

// Poller claims batches of documents and processes them one at a time.
type Poller struct {
	queue     documents.Queue
	processor Processor
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// NewPoller creates a Poller that claims up to batchSize documents per cycle
// and waits interval between cycles that find less than a full batch.
func NewPoller(queue documents.Queue, processor Processor, batchSize int, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		queue:     queue,
		processor: processor,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger.With("system", "poller"),
	}
}

// RunOnce claims one batch and processes it sequentially. It returns the
// number of documents claimed. A document that fails to persist its outcome
// is logged and does not stop the batch.
func (p *Poller) RunOnce(ctx context.Context) (int, error) {
	claims, err := p.queue.ClaimBatch(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim batch: %w", err)
	}

	for i := range claims {
		if ctx.Err() != nil {
			p.logger.Info("shutdown requested, leaving remaining claims to go stale", "remaining", len(claims)-i)
			break
		}
		if err := p.processor.Process(ctx, &claims[i]); err != nil {
			p.logger.Error("process document", "document_id", claims[i].ID, "error", err)
		}
	}

	if len(claims) > 0 {
		p.logger.Debug("batch processed", "claimed", len(claims))
	}
	return len(claims), nil
}

// Run polls until ctx is cancelled. Full batches are followed immediately by
// another claim; otherwise the poller waits for the interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "batch_size", p.batchSize, "interval", p.interval)

	for {
		n, err := p.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			p.logger.Error("poll cycle failed", "error", err)
		}

		if ctx.Err() != nil {
			p.logger.Info("poller stopped")
			return nil
		}
		if err == nil && n >= p.batchSize {
			continue
		}

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return nil
		case <-time.After(p.interval):
		}
	}
}
