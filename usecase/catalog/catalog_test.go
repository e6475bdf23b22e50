package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
	"github.com/roamio/backend/usecase/catalog"
	"github.com/roamio/backend/usecase/media"
)

// ---- fakes ----

type fakeCatalogStore struct {
	mu        sync.Mutex
	packages  map[string]*domain.Package
	updateErr error
	createErr error
	updates   int
	seq       int
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{packages: map[string]*domain.Package{}}
}

func (f *fakeCatalogStore) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pkg, ok := f.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (f *fakeCatalogStore) List(ctx context.Context, filter repository.PackageFilter) ([]domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Package, 0, len(f.packages))
	for _, pkg := range f.packages {
		out = append(out, *pkg)
	}
	return out, nil
}

func (f *fakeCatalogStore) Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	if pkg.ID == "" {
		pkg.ID = "pkg-" + string(rune('0'+f.seq))
	}
	cp := *pkg
	f.packages[pkg.ID] = &cp
	return pkg, nil
}

func (f *fakeCatalogStore) Update(ctx context.Context, pkg *domain.Package) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.packages[pkg.ID]; !ok {
		return domain.ErrPackageNotFound
	}
	cp := *pkg
	f.packages[pkg.ID] = &cp
	return nil
}

func (f *fakeCatalogStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.packages[id]; !ok {
		return domain.ErrPackageNotFound
	}
	delete(f.packages, id)
	return nil
}

type fakeDestinationRepo struct {
	destinations map[string]*domain.Destination
	removedRefs  []string
	removeErr    error
}

func newFakeDestinationRepo() *fakeDestinationRepo {
	return &fakeDestinationRepo{destinations: map[string]*domain.Destination{}}
}

func (f *fakeDestinationRepo) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	d, ok := f.destinations[id]
	if !ok {
		return nil, domain.ErrDestinationNotFound
	}
	return d, nil
}

func (f *fakeDestinationRepo) List(ctx context.Context) ([]domain.Destination, error) {
	out := make([]domain.Destination, 0, len(f.destinations))
	for _, d := range f.destinations {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDestinationRepo) Upsert(ctx context.Context, dest *domain.Destination) error {
	f.destinations[dest.ID] = dest
	return nil
}

func (f *fakeDestinationRepo) Delete(ctx context.Context, id string) error {
	delete(f.destinations, id)
	return nil
}

func (f *fakeDestinationRepo) RemovePackageRef(ctx context.Context, packageID string) error {
	f.removedRefs = append(f.removedRefs, packageID)
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, d := range f.destinations {
		kept := d.PackageRefs[:0]
		for _, ref := range d.PackageRefs {
			if ref != packageID {
				kept = append(kept, ref)
			}
		}
		d.PackageRefs = kept
	}
	return nil
}

type fakeAssets struct {
	mu      sync.Mutex
	live    map[string]bool
	deletes []string
	failAll bool
	seq     int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{live: map[string]bool{}}
}

func (f *fakeAssets) Upload(ctx context.Context, filename string, data []byte) (domain.AssetRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return domain.AssetRef{}, errors.New("object store down")
	}
	f.seq++
	id := "asset-" + filename
	f.live[id] = true
	return domain.AssetRef{AssetID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeAssets) Delete(ctx context.Context, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, assetID)
	delete(f.live, assetID)
	return nil
}

type recordingCleanup struct {
	mu    sync.Mutex
	items []string
}

func (c *recordingCleanup) EnqueueAssetDelete(ctx context.Context, assetID, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, assetID)
	return nil
}

// ---- harness ----

type fixture struct {
	domestic      *fakeCatalogStore
	international *fakeCatalogStore
	destinations  *fakeDestinationRepo
	assets        *fakeAssets
	cleanup       *recordingCleanup
	svc           *catalog.Service
}

func newFixture() *fixture {
	f := &fixture{
		domestic:      newFakeCatalogStore(),
		international: newFakeCatalogStore(),
		destinations:  newFakeDestinationRepo(),
		assets:        newFakeAssets(),
		cleanup:       &recordingCleanup{},
	}
	router := repository.NewRouter(map[domain.PackageType]repository.CatalogRepository{
		domain.PackageDomestic:      f.domestic,
		domain.PackageInternational: f.international,
	})
	reconciler := media.NewReconciler(f.assets, f.cleanup, 2, nil)
	f.svc = catalog.New(router, f.destinations, reconciler, nil)
	return f
}

func ref(id string) domain.AssetRef {
	return domain.AssetRef{AssetID: id, URL: "https://cdn.test/" + id}
}

func existingImage(id string) domain.ProposedImage {
	r := ref(id)
	return domain.ProposedImage{Ref: &r}
}

func rawImage(name string) domain.ProposedImage {
	return domain.ProposedImage{Filename: name, Data: []byte{0x1}}
}

// ---- tests ----

func TestCreate_RoutesByTypeTag(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Create(context.Background(), domain.PackageInternational,
		&domain.Package{Name: "Bali Escape"}, []domain.ProposedImage{rawImage("cover")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := f.international.packages[created.ID]; !ok {
		t.Fatal("package must land in the international store")
	}
	if len(f.domestic.packages) != 0 {
		t.Fatal("domestic store must stay untouched")
	}
	if len(created.Images) != 1 || !f.assets.live[created.Images[0].AssetID] {
		t.Fatalf("created package must reference the uploaded asset, got %+v", created.Images)
	}
}

func TestCreate_UnknownTypeTagFailsBeforeValidation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), "cruise", &domain.Package{Name: "x"}, nil)
	if !errors.Is(err, domain.ErrInvalidPackageType) {
		t.Fatalf("got %v, want ErrInvalidPackageType", err)
	}
}

func TestCreate_StoreFailureReleasesUploads(t *testing.T) {
	f := newFixture()
	f.domestic.createErr = errors.New("insert failed")

	_, err := f.svc.Create(context.Background(), domain.PackageDomestic,
		&domain.Package{Name: "Kerala"}, []domain.ProposedImage{rawImage("cover")})
	if err == nil {
		t.Fatal("expected create to fail")
	}
	if len(f.cleanup.items) != 1 || f.cleanup.items[0] != "asset-cover" {
		t.Fatalf("orphaned upload must be queued for cleanup, got %v", f.cleanup.items)
	}
}

func TestUpdate_ReconcilesBeforeRowWrite(t *testing.T) {
	f := newFixture()
	f.assets.live["a"] = true
	f.assets.live["b"] = true
	f.domestic.packages["pkg-1"] = &domain.Package{
		ID: "pkg-1", Type: domain.PackageDomestic, Name: "Goa Getaway",
		Images: []domain.AssetRef{ref("a"), ref("b")},
		Likes:  7,
	}

	updated, err := f.svc.Update(context.Background(), domain.PackageDomestic, "pkg-1",
		&domain.Package{Name: "Goa Getaway v2"},
		[]domain.ProposedImage{existingImage("a"), rawImage("c")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Images[0].AssetID != "a" {
		t.Fatalf("kept asset must stay first: %+v", updated.Images)
	}
	if f.assets.live["b"] {
		t.Fatal("dropped asset b must be deleted remotely")
	}
	if updated.Likes != 7 {
		t.Fatalf("likes must carry over, got %d", updated.Likes)
	}
	if updated.Type != domain.PackageDomestic {
		t.Fatalf("type tag is immutable, got %v", updated.Type)
	}
	stored := f.domestic.packages["pkg-1"]
	if stored.Name != "Goa Getaway v2" || len(stored.Images) != 2 {
		t.Fatalf("row not rewritten: %+v", stored)
	}
}

func TestUpdate_UploadFailureLeavesRowUntouched(t *testing.T) {
	f := newFixture()
	f.assets.live["a"] = true
	f.domestic.packages["pkg-1"] = &domain.Package{
		ID: "pkg-1", Type: domain.PackageDomestic, Name: "Goa Getaway",
		Images: []domain.AssetRef{ref("a")},
	}
	f.assets.failAll = true

	_, err := f.svc.Update(context.Background(), domain.PackageDomestic, "pkg-1",
		&domain.Package{Name: "Goa Getaway v2"},
		[]domain.ProposedImage{existingImage("a"), rawImage("c")})
	if !domain.IsDomainError(err, domain.ErrCodeUploadFailed) {
		t.Fatalf("got %v, want UPLOAD_FAILED", err)
	}
	if f.domestic.updates != 0 {
		t.Fatal("row must not be written after a failed reconcile")
	}
	if f.domestic.packages["pkg-1"].Name != "Goa Getaway" {
		t.Fatal("stored package changed despite the failure")
	}
	if !f.assets.live["a"] {
		t.Fatal("still-referenced asset a must survive the failed update")
	}
}

func TestUpdate_RowFailureReleasesNewUploadsOnly(t *testing.T) {
	f := newFixture()
	f.assets.live["a"] = true
	f.domestic.packages["pkg-1"] = &domain.Package{
		ID: "pkg-1", Type: domain.PackageDomestic, Name: "Goa Getaway",
		Images: []domain.AssetRef{ref("a")},
	}
	f.domestic.updateErr = errors.New("write conflict")

	_, err := f.svc.Update(context.Background(), domain.PackageDomestic, "pkg-1",
		&domain.Package{Name: "v2"},
		[]domain.ProposedImage{existingImage("a"), rawImage("c")})
	if err == nil {
		t.Fatal("expected update to fail")
	}
	if !f.assets.live["a"] {
		t.Fatal("previously stored asset a must survive an aborted row write")
	}
	if len(f.cleanup.items) != 1 || f.cleanup.items[0] != "asset-c" {
		t.Fatalf("only the new upload may be queued for cleanup, got %v", f.cleanup.items)
	}
}

func TestDelete_TearsDownMediaAndDestinationRefs(t *testing.T) {
	f := newFixture()
	f.assets.live["a"] = true
	f.assets.live["b"] = true
	f.international.packages["pkg-9"] = &domain.Package{
		ID: "pkg-9", Type: domain.PackageInternational, Name: "Swiss Alps",
		Images: []domain.AssetRef{ref("a"), ref("b")},
	}
	f.destinations.destinations["dest-1"] = &domain.Destination{
		ID: "dest-1", Name: "Europe", PackageRefs: []string{"pkg-9", "pkg-2"},
	}

	if err := f.svc.Delete(context.Background(), domain.PackageInternational, "pkg-9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.international.packages["pkg-9"]; ok {
		t.Fatal("row must be gone")
	}
	if len(f.assets.live) != 0 {
		t.Fatalf("all package assets must be torn down, still live: %v", f.assets.live)
	}
	refs := f.destinations.destinations["dest-1"].PackageRefs
	if len(refs) != 1 || refs[0] != "pkg-2" {
		t.Fatalf("destination refs not cleaned: %v", refs)
	}
}

func TestDelete_MissingPackageSkipsSideEffects(t *testing.T) {
	f := newFixture()
	err := f.svc.Delete(context.Background(), domain.PackageDomestic, "ghost")
	if !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("got %v, want ErrPackageNotFound", err)
	}
	if len(f.destinations.removedRefs) != 0 || len(f.assets.deletes) != 0 {
		t.Fatal("no side effects may run for a missing package")
	}
}

func TestDelete_RefCleanupFailureIsSurfacedAfterTeardown(t *testing.T) {
	f := newFixture()
	f.assets.live["a"] = true
	f.domestic.packages["pkg-1"] = &domain.Package{
		ID: "pkg-1", Type: domain.PackageDomestic, Name: "Goa",
		Images: []domain.AssetRef{ref("a")},
	}
	f.destinations.removeErr = errors.New("destinations table locked")

	err := f.svc.Delete(context.Background(), domain.PackageDomestic, "pkg-1")
	if err == nil {
		t.Fatal("ref cleanup failure must be surfaced")
	}
	if len(f.assets.live) != 0 {
		t.Fatal("media teardown must still run")
	}
}

func TestGet_UnknownTypeTag(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), "orbital", "pkg-1")
	if !errors.Is(err, domain.ErrInvalidPackageType) {
		t.Fatalf("got %v, want ErrInvalidPackageType", err)
	}
}
