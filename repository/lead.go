package repository

import (
	"context"

	"github.com/roamio/backend/domain"
)

type LeadFilter struct {
	PackageID string
	Status    string
	Limit     int
	Offset    int
}

type LeadRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
	Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
