package repository

import (
	"context"

	"github.com/roamio/backend/domain"
)

type DestinationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Destination, error)
	List(ctx context.Context) ([]domain.Destination, error)
	Upsert(ctx context.Context, dest *domain.Destination) error
	Delete(ctx context.Context, id string) error
	// RemovePackageRef strips a package id from every destination that
	// references it. Called as part of package deletion.
	RemovePackageRef(ctx context.Context, packageID string) error
}
