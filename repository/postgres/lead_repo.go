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

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository returns a Postgres-backed implementation of LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) repository.LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, package_type, package_id, user_id, name, email, phone,
	travelers, start_date, special_requests, alternate_contact, price_max,
	status, created_at`

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	const query = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanLead(row)
}

func (r *leadRepository) List(ctx context.Context, filter repository.LeadFilter) ([]domain.Lead, error) {
	const query = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE ($1 = '' OR package_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.PackageID, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead == nil {
		return nil, domain.ErrInvalidPayload
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = "new"
	}

	const query = `
	INSERT INTO leads (id, package_type, package_id, user_id, name, email, phone,
		travelers, start_date, special_requests, alternate_contact, price_max, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING created_at
	`

	// Anonymous submitters persist as NULL, not as an empty string.
	var userID interface{}
	if lead.UserID != "" {
		userID = lead.UserID
	}

	if err := r.pool.QueryRow(ctx, query,
		lead.ID,
		string(lead.PackageType),
		lead.PackageID,
		userID,
		lead.Name,
		lead.Email,
		lead.Phone,
		marshalJSON(lead.Travelers),
		lead.StartDate,
		lead.SpecialRequests,
		lead.AlternateContact,
		lead.PriceMax,
		lead.Status,
	).Scan(&lead.CreatedAt); err != nil {
		return nil, err
	}

	return lead, nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE leads SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leads WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func scanLead(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Lead, error) {
	var lead domain.Lead
	var (
		pkgType   string
		userID    *string
		travelers []byte
	)

	if err := row.Scan(
		&lead.ID,
		&pkgType,
		&lead.PackageID,
		&userID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&travelers,
		&lead.StartDate,
		&lead.SpecialRequests,
		&lead.AlternateContact,
		&lead.PriceMax,
		&lead.Status,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, err
	}

	lead.PackageType = domain.PackageType(pkgType)
	if userID != nil {
		lead.UserID = *userID
	}
	unmarshalJSON(travelers, &lead.Travelers)

	return &lead, nil
}
