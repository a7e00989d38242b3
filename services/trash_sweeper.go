package services

import (
	"context"
	"time"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/metrics"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/storage"

	"go.uber.org/zap"
)

const sweepBatchSize = 200

// TrashSweeper purges rows that have sat in the trash longer than the
// retention window, one row at a time.
type TrashSweeper struct {
	files     repositories.FileRepository
	remover   objectRemover
	retention time.Duration
	interval  time.Duration
}

func NewTrashSweeper(files repositories.FileRepository, store storage.ObjectStore, rootFolder string, retention, interval time.Duration) *TrashSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TrashSweeper{
		files:     files,
		remover:   objectRemover{store: store, rootFolder: rootFolder},
		retention: retention,
		interval:  interval,
	}
}

// Start runs the sweep loop until ctx is done. A non-positive retention
// leaves trash alone.
func (s *TrashSweeper) Start(ctx context.Context) {
	if s.retention <= 0 {
		return
	}
	go s.loop(ctx)
}

func (s *TrashSweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.Sweep(ctx, now); err != nil {
				logger.Error("trash sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep purges everything trashed before now minus the retention window.
func (s *TrashSweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.retention)
	var purged int64

	for {
		batch, err := s.files.ListTrashedBefore(ctx, nil, cutoff, sweepBatchSize)
		if err != nil {
			return purged, err
		}
		for _, file := range batch {
			if ctx.Err() != nil {
				return purged, ctx.Err()
			}
			rowCtx := context.WithoutCancel(ctx)
			s.remover.remove(rowCtx, file)
			n, err := s.files.DeleteByIDAndUser(rowCtx, nil, file.ID, file.UserID)
			if err != nil {
				return purged, err
			}
			purged += n
		}
		if len(batch) < sweepBatchSize {
			break
		}
	}

	if purged > 0 {
		metrics.RecordTrashPurged(purged)
		logger.Info("expired trash purged", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}
