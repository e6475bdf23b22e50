package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
	"github.com/roamio/backend/usecase/media"
)

// Service owns the admin-facing lifecycle of catalog packages. Every
// operation dispatches through the type router; media reconciliation always
// completes before the entity row is written.
type Service struct {
	router       *repository.Router
	destinations repository.DestinationRepository
	media        *media.Reconciler
	logger       *zap.Logger
}

func New(router *repository.Router, destinations repository.DestinationRepository, reconciler *media.Reconciler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		router:       router,
		destinations: destinations,
		media:        reconciler,
		logger:       logger,
	}
}

func (s *Service) Get(ctx context.Context, tag domain.PackageType, id string) (*domain.Package, error) {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return nil, err
	}
	return store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, tag domain.PackageType, filter repository.PackageFilter) ([]domain.Package, error) {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, filter)
}

// Create uploads the package's media first and only then inserts the row,
// so a stored package never references an asset that failed to upload.
func (s *Service) Create(ctx context.Context, tag domain.PackageType, pkg *domain.Package, images []domain.ProposedImage) (*domain.Package, error) {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	refs, err := s.media.Reconcile(ctx, nil, images)
	if err != nil {
		return nil, err
	}
	pkg.Images = refs

	created, err := store.Create(ctx, pkg)
	if err != nil {
		s.media.Release(ctx, nil, refs)
		return nil, err
	}
	return created, nil
}

// Update reconciles the proposed image list against the stored one before
// the row is rewritten. A reconcile failure leaves the stored package
// untouched. The type tag is immutable; fields not editable through the
// admin form (likes, reviews, comments) are carried over from the stored
// record.
func (s *Service) Update(ctx context.Context, tag domain.PackageType, id string, pkg *domain.Package, images []domain.ProposedImage) (*domain.Package, error) {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	existing, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.media.Reconcile(ctx, existing.Images, images)
	if err != nil {
		return nil, err
	}

	pkg.ID = existing.ID
	pkg.Type = existing.Type
	pkg.Images = refs
	pkg.Likes = existing.Likes
	pkg.Reviews = existing.Reviews
	pkg.Comments = existing.Comments
	pkg.CreatedAt = existing.CreatedAt

	if err := store.Update(ctx, pkg); err != nil {
		s.media.Release(ctx, existing.Images, refs)
		return nil, err
	}
	return pkg, nil
}

// Delete removes the row, strips the package id from every destination that
// references it, and tears down its media. Asset teardown is best-effort by
// design; a failed destination cleanup is surfaced.
func (s *Service) Delete(ctx context.Context, tag domain.PackageType, id string) error {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return err
	}

	pkg, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, id); err != nil {
		return err
	}

	var refErr error
	if err := s.destinations.RemovePackageRef(ctx, id); err != nil {
		s.logger.Error("failed to remove package refs from destinations",
			zap.String("package_id", id), zap.Error(err))
		refErr = err
	}

	s.media.Teardown(ctx, pkg.Images)

	return refErr
}

// Destinations is the public read surface for destination aggregates.
func (s *Service) Destinations(ctx context.Context) ([]domain.Destination, error) {
	return s.destinations.List(ctx)
}

func (s *Service) Destination(ctx context.Context, id string) (*domain.Destination, error) {
	return s.destinations.GetByID(ctx, id)
}

// SaveDestination creates or updates a destination (admin only).
func (s *Service) SaveDestination(ctx context.Context, dest *domain.Destination) error {
	return s.destinations.Upsert(ctx, dest)
}

func (s *Service) DeleteDestination(ctx context.Context, id string) error {
	return s.destinations.Delete(ctx, id)
}
