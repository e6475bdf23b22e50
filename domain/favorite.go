package domain

// FavoriteState is the outcome of a favorites toggle.
type FavoriteState string

const (
	FavoriteAdded   FavoriteState = "added"
	FavoriteRemoved FavoriteState = "removed"
)

// FavoriteEdge is a (user, package) membership. The package type is recorded
// on the edge at creation time so listing can dereference the owning store
// without probing.
type FavoriteEdge struct {
	Type      PackageType `json:"type"`
	PackageID string      `json:"package_id"`
}
