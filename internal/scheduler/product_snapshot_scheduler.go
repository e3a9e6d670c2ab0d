package scheduler

import (
	"context"
	"time"

	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const pruneTimeout = 2 * time.Minute

// SnapshotPruner deletes product snapshots that went stale
type SnapshotPruner interface {
	PruneStaleSnapshots(ctx context.Context) (int64, error)
}

// ProductSnapshotScheduler periodically prunes the durable product snapshot table
type ProductSnapshotScheduler struct {
	cron     *cron.Cron
	pruner   SnapshotPruner
	schedule string
}

// NewProductSnapshotScheduler creates the scheduler. schedule is a standard
// five-field cron expression.
func NewProductSnapshotScheduler(pruner SnapshotPruner, schedule string) *ProductSnapshotScheduler {
	return &ProductSnapshotScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pruner:   pruner,
		schedule: schedule,
	}
}

// Start registers the prune job and starts the cron runner
func (s *ProductSnapshotScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.prune); err != nil {
		logger.Error("Failed to add cron job for snapshot pruning", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Product snapshot scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

func (s *ProductSnapshotScheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := s.pruner.PruneStaleSnapshots(ctx)
	if err != nil {
		logger.Error("Scheduled snapshot prune failed", err)
		return
	}
	logger.Info("Scheduled snapshot prune finished", map[string]interface{}{
		"removed": removed,
	})
}

// Stop halts the runner and waits for a running prune to return
func (s *ProductSnapshotScheduler) Stop() {
	logger.Info("Stopping product snapshot scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Product snapshot scheduler stopped")
}
