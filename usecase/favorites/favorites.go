package favorites

import (
	"context"

	"go.uber.org/zap"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

// Service manages per-user favorite edges. Authentication happens before
// this layer; the caller passes a resolved user id.
type Service struct {
	favorites repository.FavoriteRepository
	router    *repository.Router
	logger    *zap.Logger
}

func New(favorites repository.FavoriteRepository, router *repository.Router, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		favorites: favorites,
		router:    router,
		logger:    logger,
	}
}

// Toggle flips membership for the (user, package) pair. The referenced
// package must exist; the storage layer makes the flip atomic so concurrent
// toggles converge instead of racing.
func (s *Service) Toggle(ctx context.Context, userID string, tag domain.PackageType, packageID string) (domain.FavoriteState, error) {
	store, err := s.router.StoreFor(tag)
	if err != nil {
		return "", err
	}
	if _, err := store.GetByID(ctx, packageID); err != nil {
		return "", err
	}

	return s.favorites.Toggle(ctx, userID, domain.FavoriteEdge{
		Type:      tag,
		PackageID: packageID,
	})
}

// List dereferences every favorite edge into its package. Edges whose
// package has since been deleted (or whose type is no longer registered)
// are skipped rather than failing the whole listing.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Package, error) {
	edges, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	pkgs := make([]domain.Package, 0, len(edges))
	for _, edge := range edges {
		store, err := s.router.StoreFor(edge.Type)
		if err != nil {
			s.logger.Warn("favorite edge references unknown package type",
				zap.String("type", string(edge.Type)))
			continue
		}
		pkg, err := store.GetByID(ctx, edge.PackageID)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				continue
			}
			return nil, err
		}
		pkgs = append(pkgs, *pkg)
	}
	return pkgs, nil
}
