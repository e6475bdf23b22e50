package repository

import (
	"context"

	"github.com/roamio/backend/domain"
)

type PackageFilter struct {
	Limit  int
	Offset int
}

// CatalogRepository is the uniform CRUD contract every physical package
// store satisfies, regardless of which table or engine backs it.
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Package, error)
	List(ctx context.Context, filter PackageFilter) ([]domain.Package, error)
	Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error)
	Update(ctx context.Context, pkg *domain.Package) error
	Delete(ctx context.Context, id string) error
}

// Router resolves a package type tag to the store that owns it. It is the
// single seam where per-type storage polymorphism is visible; callers never
// branch on the tag themselves.
type Router struct {
	stores map[domain.PackageType]CatalogRepository
}

// NewRouter builds the lookup table once at startup.
func NewRouter(stores map[domain.PackageType]CatalogRepository) *Router {
	table := make(map[domain.PackageType]CatalogRepository, len(stores))
	for tag, store := range stores {
		table[tag] = store
	}
	return &Router{stores: table}
}

// StoreFor returns the store owning the given type tag. Unknown tags fail
// before any store access happens.
func (r *Router) StoreFor(tag domain.PackageType) (CatalogRepository, error) {
	store, ok := r.stores[tag]
	if !ok {
		return nil, domain.ErrInvalidPackageType
	}
	return store, nil
}

// Types lists the registered type tags.
func (r *Router) Types() []domain.PackageType {
	tags := make([]domain.PackageType, 0, len(r.stores))
	for tag := range r.stores {
		tags = append(tags, tag)
	}
	return tags
}
