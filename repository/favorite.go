package repository

import (
	"context"

	"github.com/roamio/backend/domain"
)

// FavoriteRepository manages the per-user favorites set. Toggle must be a
// single atomic conditional mutation at the storage layer, not a
// read-then-write sequence.
type FavoriteRepository interface {
	Toggle(ctx context.Context, userID string, edge domain.FavoriteEdge) (domain.FavoriteState, error)
	List(ctx context.Context, userID string) ([]domain.FavoriteEdge, error)
}
