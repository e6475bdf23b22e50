package favorites_test

import (
	"context"
	"errors"
	"testing"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
	"github.com/roamio/backend/usecase/favorites"
)

// ---- fakes ----

type fakeFavoriteRepo struct {
	sets map[string]map[domain.FavoriteEdge]bool
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{sets: map[string]map[domain.FavoriteEdge]bool{}}
}

func (f *fakeFavoriteRepo) Toggle(ctx context.Context, userID string, edge domain.FavoriteEdge) (domain.FavoriteState, error) {
	set, ok := f.sets[userID]
	if !ok {
		set = map[domain.FavoriteEdge]bool{}
		f.sets[userID] = set
	}
	if set[edge] {
		delete(set, edge)
		return domain.FavoriteRemoved, nil
	}
	set[edge] = true
	return domain.FavoriteAdded, nil
}

func (f *fakeFavoriteRepo) List(ctx context.Context, userID string) ([]domain.FavoriteEdge, error) {
	out := make([]domain.FavoriteEdge, 0, len(f.sets[userID]))
	for edge := range f.sets[userID] {
		out = append(out, edge)
	}
	return out, nil
}

type staticCatalogStore struct {
	packages map[string]*domain.Package
	getErr   error
}

func (s *staticCatalogStore) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	pkg, ok := s.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	return pkg, nil
}

func (s *staticCatalogStore) List(ctx context.Context, filter repository.PackageFilter) ([]domain.Package, error) {
	return nil, nil
}

func (s *staticCatalogStore) Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	return pkg, nil
}

func (s *staticCatalogStore) Update(ctx context.Context, pkg *domain.Package) error { return nil }
func (s *staticCatalogStore) Delete(ctx context.Context, id string) error           { return nil }

func pkg(id string, tag domain.PackageType, name string) *domain.Package {
	return &domain.Package{ID: id, Type: tag, Name: name}
}

func newService(domestic, international *staticCatalogStore, favs *fakeFavoriteRepo) *favorites.Service {
	router := repository.NewRouter(map[domain.PackageType]repository.CatalogRepository{
		domain.PackageDomestic:      domestic,
		domain.PackageInternational: international,
	})
	return favorites.New(favs, router, nil)
}

// ---- tests ----

func TestToggle_FlipsMembership(t *testing.T) {
	domestic := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-1": pkg("pkg-1", domain.PackageDomestic, "Goa"),
	}}
	svc := newService(domestic, &staticCatalogStore{}, newFakeFavoriteRepo())

	state, err := svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1")
	if err != nil || state != domain.FavoriteAdded {
		t.Fatalf("first toggle: state=%v err=%v", state, err)
	}
	state, err = svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1")
	if err != nil || state != domain.FavoriteRemoved {
		t.Fatalf("second toggle: state=%v err=%v", state, err)
	}
	state, err = svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1")
	if err != nil || state != domain.FavoriteAdded {
		t.Fatalf("third toggle: state=%v err=%v", state, err)
	}
}

func TestToggle_RejectsMissingPackage(t *testing.T) {
	favs := newFakeFavoriteRepo()
	svc := newService(&staticCatalogStore{packages: map[string]*domain.Package{}}, &staticCatalogStore{}, favs)

	_, err := svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "ghost")
	if !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("got %v, want ErrPackageNotFound", err)
	}
	if len(favs.sets["user-a"]) != 0 {
		t.Fatal("no edge may be written for a missing package")
	}
}

func TestToggle_RejectsUnknownTypeTag(t *testing.T) {
	svc := newService(&staticCatalogStore{}, &staticCatalogStore{}, newFakeFavoriteRepo())
	_, err := svc.Toggle(context.Background(), "user-a", "cruise", "pkg-1")
	if !errors.Is(err, domain.ErrInvalidPackageType) {
		t.Fatalf("got %v, want ErrInvalidPackageType", err)
	}
}

func TestList_DereferencesAcrossStores(t *testing.T) {
	domestic := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-1": pkg("pkg-1", domain.PackageDomestic, "Goa"),
	}}
	international := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-2": pkg("pkg-2", domain.PackageInternational, "Bali"),
	}}
	favs := newFakeFavoriteRepo()
	svc := newService(domestic, international, favs)

	for _, edge := range []struct {
		tag domain.PackageType
		id  string
	}{
		{domain.PackageDomestic, "pkg-1"},
		{domain.PackageInternational, "pkg-2"},
	} {
		if _, err := svc.Toggle(context.Background(), "user-a", edge.tag, edge.id); err != nil {
			t.Fatalf("toggle %s/%s: %v", edge.tag, edge.id, err)
		}
	}

	pkgs, err := svc.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(pkgs))
	}
	seen := map[string]bool{}
	for _, p := range pkgs {
		seen[p.ID] = true
	}
	if !seen["pkg-1"] || !seen["pkg-2"] {
		t.Fatalf("missing packages in listing: %v", seen)
	}
}

func TestList_SkipsDeletedPackages(t *testing.T) {
	domestic := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-1": pkg("pkg-1", domain.PackageDomestic, "Goa"),
	}}
	favs := newFakeFavoriteRepo()
	svc := newService(domestic, &staticCatalogStore{}, favs)

	if _, err := svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	// Package deleted after the edge was written.
	delete(domestic.packages, "pkg-1")

	pkgs, err := svc.List(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pkgs) != 0 {
		t.Fatalf("stale edges must be skipped, got %+v", pkgs)
	}
}

func TestList_SurfacesStoreFailures(t *testing.T) {
	domestic := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-1": pkg("pkg-1", domain.PackageDomestic, "Goa"),
	}}
	favs := newFakeFavoriteRepo()
	svc := newService(domestic, &staticCatalogStore{}, favs)

	if _, err := svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	domestic.getErr = errors.New("store offline")

	if _, err := svc.List(context.Background(), "user-a"); err == nil {
		t.Fatal("infrastructure failures must not be swallowed as missing packages")
	}
}

func TestToggle_IsolatesUsers(t *testing.T) {
	domestic := &staticCatalogStore{packages: map[string]*domain.Package{
		"pkg-1": pkg("pkg-1", domain.PackageDomestic, "Goa"),
	}}
	favs := newFakeFavoriteRepo()
	svc := newService(domestic, &staticCatalogStore{}, favs)

	if _, err := svc.Toggle(context.Background(), "user-a", domain.PackageDomestic, "pkg-1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	pkgs, err := svc.List(context.Background(), "user-b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pkgs) != 0 {
		t.Fatalf("user-b must not see user-a favorites, got %+v", pkgs)
	}
}
