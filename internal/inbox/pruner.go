package inbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Store interface {
	DeleteReceivedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner periodically removes inbox keys older than the retention window. A redelivery
// arriving after its key was pruned is dispatched again.
type Pruner struct {
	store        Store
	retention    time.Duration
	pollInterval time.Duration
	pollTimeout  time.Duration
	now          func() time.Time
	logger       *zap.Logger

	wg sync.WaitGroup
}

func NewPruner(store Store, retention, pollInterval, pollTimeout time.Duration, logger *zap.Logger) *Pruner {
	return &Pruner{
		store:        store,
		retention:    retention,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		now:          time.Now,
		logger:       logger,
	}
}

// Start runs the prune loop until ctx is cancelled. Wait blocks until it has exited.
func (p *Pruner) Start(ctx context.Context) {
	p.logger.Info("Starting inbox pruner...",
		zap.Duration("retention", p.retention),
		zap.Duration("interval", p.pollInterval))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("Inbox pruner stopped.")
				return
			case <-ticker.C:
				p.Prune(ctx)
			}
		}
	}()
}

func (p *Pruner) Wait() {
	p.wg.Wait()
}

func (p *Pruner) Prune(ctx context.Context) {
	pruneCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	cutoff := p.now().UTC().Add(-p.retention)
	deleted, err := p.store.DeleteReceivedBefore(pruneCtx, cutoff)
	if err != nil {
		p.logger.Error("Failed to prune inbox messages", zap.Error(err))
		return
	}
	if deleted == 0 {
		p.logger.Debug("No expired inbox messages found.")
		return
	}
	p.logger.Info("Pruned expired inbox messages", zap.Int64("count", deleted), zap.Time("cutoff", cutoff))
}
