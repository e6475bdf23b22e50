package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

type destinationRepository struct {
	pool *pgxpool.Pool
}

// NewDestinationRepository returns a Postgres-backed DestinationRepository.
func NewDestinationRepository(pool *pgxpool.Pool) repository.DestinationRepository {
	return &destinationRepository{pool: pool}
}

func (r *destinationRepository) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	const query = `
	SELECT id, name, description, region, package_refs, created_at, updated_at
	FROM destinations
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanDestination(row)
}

func (r *destinationRepository) List(ctx context.Context) ([]domain.Destination, error) {
	const query = `
	SELECT id, name, description, region, package_refs, created_at, updated_at
	FROM destinations
	ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dests []domain.Destination
	for rows.Next() {
		dest, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		dests = append(dests, *dest)
	}
	return dests, rows.Err()
}

func (r *destinationRepository) Upsert(ctx context.Context, dest *domain.Destination) error {
	if dest == nil || dest.Name == "" {
		return domain.ErrInvalidPayload
	}
	if dest.ID == "" {
		dest.ID = uuid.NewString()
	}
	if dest.PackageRefs == nil {
		dest.PackageRefs = []string{}
	}

	const query = `
	INSERT INTO destinations (id, name, description, region, package_refs)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		description = EXCLUDED.description,
		region = EXCLUDED.region,
		package_refs = EXCLUDED.package_refs,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		dest.ID,
		dest.Name,
		dest.Description,
		dest.Region,
		dest.PackageRefs,
	).Scan(&dest.CreatedAt, &dest.UpdatedAt)
}

func (r *destinationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM destinations WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDestinationNotFound
	}
	return nil
}

func (r *destinationRepository) RemovePackageRef(ctx context.Context, packageID string) error {
	const query = `
	UPDATE destinations
	SET package_refs = array_remove(package_refs, $1),
		updated_at = NOW()
	WHERE $1 = ANY(package_refs)
	`
	_, err := r.pool.Exec(ctx, query, packageID)
	return err
}

func scanDestination(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Destination, error) {
	var dest domain.Destination
	if err := row.Scan(
		&dest.ID,
		&dest.Name,
		&dest.Description,
		&dest.Region,
		&dest.PackageRefs,
		&dest.CreatedAt,
		&dest.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDestinationNotFound
		}
		return nil, err
	}
	if dest.PackageRefs == nil {
		dest.PackageRefs = []string{}
	}
	return &dest, nil
}
