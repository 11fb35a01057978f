package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harsha86604/Backlog-excellence-bot/internal/backlog"
	"github.com/harsha86604/Backlog-excellence-bot/internal/devops"
)

// Digest periodically scans the backlog and logs how many items are
// overdue or due soon. It is observational only: no mutations, no state
// carried between scans.
type Digest struct {
	directory devops.Directory
	logger    *zap.Logger
	interval  time.Duration
	wg        sync.WaitGroup
	stop      chan struct{}
}

func NewDigest(directory devops.Directory, logger *zap.Logger, interval time.Duration) *Digest {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Digest{
		directory: directory,
		logger:    logger,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

func (d *Digest) Start(ctx context.Context) {
	d.logger.Info("Starting deadline digest", zap.Duration("interval", d.interval))
	d.wg.Add(1)
	go d.run(ctx)
}

func (d *Digest) Stop() {
	d.logger.Info("Stopping deadline digest...")
	close(d.stop)
	d.wg.Wait()
	d.logger.Info("Deadline digest stopped")
}

func (d *Digest) run(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.scan(ctx)
		}
	}
}

func (d *Digest) scan(ctx context.Context) {
	items, err := d.directory.FetchAll(ctx)
	if err != nil {
		d.logger.Error("digest fetch failed", zap.Error(err))
		return
	}

	overdue := 0
	urgent := backlog.HighPriority(items, time.Now(), "")
	for _, p := range urgent {
		if p.DaysRemaining < 0 {
			overdue++
		}
	}

	d.logger.Info("backlog digest",
		zap.Int("total", len(items)),
		zap.Int("pending", len(backlog.Pending(items))),
		zap.Int("due_soon", len(urgent)-overdue),
		zap.Int("overdue", overdue),
	)
}
