package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/roamio/backend/internal/infrastructure/buffer"
	"github.com/roamio/backend/usecase"
)

// SweeperConfig controls how frequently the cleanup queue is drained.
type SweeperConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// AssetSweeper drains deferred object-store deletions on a cron schedule.
// It is the eventual-consistency half of media reconciliation: inline
// deletes that failed are retried here until the remote store converges.
type AssetSweeper struct {
	store  *buffer.Store
	assets usecase.ObjectStore
	logger *zap.Logger
	cron   *cron.Cron
	cfg    SweeperConfig
}

func NewAssetSweeper(store *buffer.Store, assets usecase.ObjectStore, logger *zap.Logger, cfg SweeperConfig) *AssetSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sw := &AssetSweeper{
		store:  store,
		assets: assets,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sw.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sw.Drain(ctx); err != nil {
			sw.logger.Error("asset cleanup drain failed", zap.Error(err))
		}
	})

	return sw
}

// Start launches the cron scheduler.
func (sw *AssetSweeper) Start() {
	if sw == nil || sw.cron == nil {
		return
	}
	sw.cron.Start()
	sw.logger.Info("asset sweeper started")
}

// Stop gracefully stops the scheduler.
func (sw *AssetSweeper) Stop(ctx context.Context) {
	if sw == nil || sw.cron == nil {
		return
	}
	stopCtx := sw.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sw.logger.Info("asset sweeper stopped")
}

// Drain retries queued deletions synchronously. Items that keep failing are
// dropped after MaxRetries; at that point the remote orphan is accepted.
func (sw *AssetSweeper) Drain(ctx context.Context) error {
	if sw == nil || sw.store == nil {
		return nil
	}

	items, err := sw.store.GetBatch(sw.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := sw.assets.Delete(ctx, item.AssetID); err != nil {
			sw.logger.Warn("deferred asset delete failed",
				zap.String("asset_id", item.AssetID),
				zap.Int("retries", item.Retries),
				zap.Error(err))

			item.Retries++
			if err := sw.store.Remove(item); err != nil {
				sw.logger.Warn("failed to remove cleanup item", zap.Error(err))
				continue
			}
			if item.Retries >= sw.cfg.MaxRetries {
				sw.logger.Warn("dropping cleanup item (max retries reached)",
					zap.String("asset_id", item.AssetID))
				continue
			}
			if err := sw.store.Requeue(item); err != nil {
				sw.logger.Error("failed to requeue cleanup item", zap.Error(err))
			}
			continue
		}

		if err := sw.store.Remove(item); err != nil {
			sw.logger.Warn("failed to purge processed cleanup item", zap.Error(err))
		}
	}
	return nil
}

// Enqueue records an asset id for deferred deletion.
func (sw *AssetSweeper) Enqueue(ctx context.Context, assetID, reason string) error {
	if sw == nil || sw.store == nil {
		return fmt.Errorf("asset sweeper not configured")
	}
	return sw.store.Enqueue(buffer.Item{
		AssetID: assetID,
		Reason:  reason,
	})
}

// Size returns the number of queued deletions.
func (sw *AssetSweeper) Size() int {
	if sw == nil || sw.store == nil {
		return 0
	}
	size, err := sw.store.Size()
	if err != nil {
		return 0
	}
	return size
}

// CleanupBridge adapts the sweeper to the usecase.CleanupQueue port.
type CleanupBridge struct {
	sweeper *AssetSweeper
}

func NewCleanupBridge(sweeper *AssetSweeper) *CleanupBridge {
	return &CleanupBridge{sweeper: sweeper}
}

func (b *CleanupBridge) EnqueueAssetDelete(ctx context.Context, assetID, reason string) error {
	if b == nil || b.sweeper == nil || assetID == "" {
		return fmt.Errorf("invalid cleanup request")
	}
	return b.sweeper.Enqueue(ctx, assetID, reason)
}

var _ usecase.CleanupQueue = (*CleanupBridge)(nil)
