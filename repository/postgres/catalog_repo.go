package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

// Table names backing the catalog stores. Each package type owns one table
// with an identical schema so they can scale and migrate independently.
const (
	TableDomesticPackages      = "domestic_packages"
	TableInternationalPackages = "international_packages"
)

type catalogRepository struct {
	pool    *pgxpool.Pool
	table   string
	pkgType domain.PackageType
}

// NewCatalogRepository returns a Postgres-backed CatalogRepository bound to
// a single table. The table name comes from the constants above, never from
// request input.
func NewCatalogRepository(pool *pgxpool.Pool, table string, pkgType domain.PackageType) repository.CatalogRepository {
	return &catalogRepository{pool: pool, table: table, pkgType: pkgType}
}

// NewCatalogRouter wires one store per package type into a router.
func NewCatalogRouter(pool *pgxpool.Pool) *repository.Router {
	return repository.NewRouter(map[domain.PackageType]repository.CatalogRepository{
		domain.PackageDomestic:      NewCatalogRepository(pool, TableDomesticPackages, domain.PackageDomestic),
		domain.PackageInternational: NewCatalogRepository(pool, TableInternationalPackages, domain.PackageInternational),
	})
}

const catalogColumns = `id, name, description, duration, price_onward, places,
	images, highlights, inclusions, exclusions, itinerary,
	availability_start, availability_end, likes, reviews, comments,
	created_at, updated_at`

func (r *catalogRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, catalogColumns, r.table)
	row := r.pool.QueryRow(ctx, query, id)
	return r.scanPackage(row)
}

func (r *catalogRepository) List(ctx context.Context, filter repository.PackageFilter) ([]domain.Package, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
	`, catalogColumns, r.table)

	rows, err := r.pool.Query(ctx, query, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pkgs []domain.Package
	for rows.Next() {
		pkg, err := r.scanPackage(rows)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, *pkg)
	}
	return pkgs, rows.Err()
}

func (r *catalogRepository) Create(ctx context.Context, pkg *domain.Package) (*domain.Package, error) {
	if pkg == nil {
		return nil, domain.ErrInvalidPayload
	}
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	pkg.Type = r.pkgType

	query := fmt.Sprintf(`
	INSERT INTO %s (id, name, description, duration, price_onward, places,
		images, highlights, inclusions, exclusions, itinerary,
		availability_start, availability_end, likes, reviews, comments)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING created_at, updated_at
	`, r.table)

	if err := r.pool.QueryRow(ctx, query,
		pkg.ID,
		pkg.Name,
		pkg.Description,
		pkg.Duration,
		pkg.PriceOnward,
		pkg.Places,
		marshalJSON(pkg.Images),
		marshalJSON(pkg.Highlights),
		marshalJSON(pkg.Inclusions),
		marshalJSON(pkg.Exclusions),
		marshalJSON(pkg.Itinerary),
		pkg.Availability.Start,
		pkg.Availability.End,
		pkg.Likes,
		marshalJSON(pkg.Reviews),
		marshalJSON(pkg.Comments),
	).Scan(&pkg.CreatedAt, &pkg.UpdatedAt); err != nil {
		return nil, err
	}

	return pkg, nil
}

func (r *catalogRepository) Update(ctx context.Context, pkg *domain.Package) error {
	if pkg == nil {
		return domain.ErrInvalidPayload
	}

	query := fmt.Sprintf(`
	UPDATE %s
	SET name = $2,
		description = $3,
		duration = $4,
		price_onward = $5,
		places = $6,
		images = $7,
		highlights = $8,
		inclusions = $9,
		exclusions = $10,
		itinerary = $11,
		availability_start = $12,
		availability_end = $13,
		likes = $14,
		reviews = $15,
		comments = $16,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`, r.table)

	if err := r.pool.QueryRow(ctx, query,
		pkg.ID,
		pkg.Name,
		pkg.Description,
		pkg.Duration,
		pkg.PriceOnward,
		pkg.Places,
		marshalJSON(pkg.Images),
		marshalJSON(pkg.Highlights),
		marshalJSON(pkg.Inclusions),
		marshalJSON(pkg.Exclusions),
		marshalJSON(pkg.Itinerary),
		pkg.Availability.Start,
		pkg.Availability.End,
		pkg.Likes,
		marshalJSON(pkg.Reviews),
		marshalJSON(pkg.Comments),
	).Scan(&pkg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPackageNotFound
		}
		return err
	}

	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}

func (r *catalogRepository) scanPackage(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Package, error) {
	var pkg domain.Package
	var (
		images     []byte
		highlights []byte
		inclusions []byte
		exclusions []byte
		itinerary  []byte
		reviews    []byte
		comments   []byte
	)

	if err := row.Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Description,
		&pkg.Duration,
		&pkg.PriceOnward,
		&pkg.Places,
		&images,
		&highlights,
		&inclusions,
		&exclusions,
		&itinerary,
		&pkg.Availability.Start,
		&pkg.Availability.End,
		&pkg.Likes,
		&reviews,
		&comments,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, err
	}

	pkg.Type = r.pkgType
	unmarshalJSON(images, &pkg.Images)
	unmarshalJSON(highlights, &pkg.Highlights)
	unmarshalJSON(inclusions, &pkg.Inclusions)
	unmarshalJSON(exclusions, &pkg.Exclusions)
	unmarshalJSON(itinerary, &pkg.Itinerary)
	unmarshalJSON(reviews, &pkg.Reviews)
	unmarshalJSON(comments, &pkg.Comments)
	if pkg.Images == nil {
		pkg.Images = []domain.AssetRef{}
	}

	return &pkg, nil
}
