package media

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/usecase"
)

const defaultUploadParallelism = 4

// Reconciler aligns a package's referenced media with the remote object
// store. Uploads are all-or-nothing; teardown of removed assets is
// best-effort with failed deletes deferred to the cleanup queue.
type Reconciler struct {
	store       usecase.ObjectStore
	cleanup     usecase.CleanupQueue
	parallelism int
	logger      *zap.Logger
}

func NewReconciler(store usecase.ObjectStore, cleanup usecase.CleanupQueue, parallelism int, logger *zap.Logger) *Reconciler {
	if parallelism <= 0 {
		parallelism = defaultUploadParallelism
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:       store,
		cleanup:     cleanup,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Reconcile uploads every new image, deletes every previously referenced
// asset missing from the proposed list, and returns the final reference list
// in caller order. Any upload failure aborts the whole call before a single
// delete is attempted, so the caller never persists a reference to an asset
// that is not live. Calling it again with an unchanged, fully persisted list
// is a no-op.
func (r *Reconciler) Reconcile(ctx context.Context, previous []domain.AssetRef, proposed []domain.ProposedImage) ([]domain.AssetRef, error) {
	final := make([]domain.AssetRef, len(proposed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, img := range proposed {
		if img.IsExisting() {
			final[i] = *img.Ref
			continue
		}
		i, img := i, img
		g.Go(func() error {
			ref, err := r.store.Upload(gctx, img.Filename, img.Data)
			if err != nil {
				return err
			}
			final[i] = ref
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Uploads that did land before the abort are orphans now; hand
		// them to the sweeper so the remote store converges too.
		r.releaseUploaded(ctx, previous, final)
		return nil, domain.WrapError(domain.ErrCodeUploadFailed, "asset upload failed", err)
	}

	kept := make(map[string]struct{}, len(final))
	for _, ref := range final {
		kept[ref.AssetID] = struct{}{}
	}

	for _, prev := range previous {
		if _, ok := kept[prev.AssetID]; ok {
			continue
		}
		if err := r.store.Delete(ctx, prev.AssetID); err != nil {
			r.logger.Warn("asset delete failed, deferring to cleanup queue",
				zap.String("asset_id", prev.AssetID), zap.Error(err))
			r.deferDelete(ctx, prev.AssetID, "delete failed during reconcile")
		}
	}

	return final, nil
}

// Teardown releases every asset of a deleted package. Equivalent to a
// reconcile against an empty proposed list.
func (r *Reconciler) Teardown(ctx context.Context, previous []domain.AssetRef) {
	_, _ = r.Reconcile(ctx, previous, nil)
}

// Release defers deletion of freshly uploaded assets whose owning entity
// write failed after a successful reconcile.
func (r *Reconciler) Release(ctx context.Context, previous, uploaded []domain.AssetRef) {
	r.releaseUploaded(ctx, previous, uploaded)
}

func (r *Reconciler) releaseUploaded(ctx context.Context, previous, uploaded []domain.AssetRef) {
	prevSet := make(map[string]struct{}, len(previous))
	for _, ref := range previous {
		prevSet[ref.AssetID] = struct{}{}
	}
	for _, ref := range uploaded {
		if ref.AssetID == "" {
			continue
		}
		if _, ok := prevSet[ref.AssetID]; ok {
			continue
		}
		r.deferDelete(ctx, ref.AssetID, "entity write aborted after upload")
	}
}

func (r *Reconciler) deferDelete(ctx context.Context, assetID, reason string) {
	if r.cleanup == nil {
		return
	}
	if err := r.cleanup.EnqueueAssetDelete(ctx, assetID, reason); err != nil {
		r.logger.Error("failed to enqueue asset cleanup",
			zap.String("asset_id", assetID), zap.Error(err))
	}
}
