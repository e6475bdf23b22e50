package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	redislib "github.com/redis/go-redis/v9"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

// toggleScript flips set membership in one atomic step. Two concurrent
// toggles on the same member can never race into a duplicate or a lost
// update; Redis serializes script execution per key.
var toggleScript = redislib.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	redis.call("SREM", KEYS[1], ARGV[1])
	return 0
else
	redis.call("SADD", KEYS[1], ARGV[1])
	return 1
end
`)

type favoriteRepository struct {
	client *redislib.Client
	prefix string
}

// NewFavoriteRepository creates a Redis-backed favorites set repository.
// Each edge is a set member encoded "<type>:<packageID>" so the owning
// catalog store is recoverable without probing.
func NewFavoriteRepository(client *redislib.Client) repository.FavoriteRepository {
	return &favoriteRepository{
		client: client,
		prefix: "favorites:",
	}
}

func (r *favoriteRepository) Toggle(ctx context.Context, userID string, edge domain.FavoriteEdge) (domain.FavoriteState, error) {
	if userID == "" || edge.PackageID == "" {
		return "", domain.ErrInvalidPayload
	}

	added, err := toggleScript.Run(ctx, r.client, []string{r.key(userID)}, encodeEdge(edge)).Int()
	if err != nil {
		return "", err
	}
	if added == 1 {
		return domain.FavoriteAdded, nil
	}
	return domain.FavoriteRemoved, nil
}

func (r *favoriteRepository) List(ctx context.Context, userID string) ([]domain.FavoriteEdge, error) {
	members, err := r.client.SMembers(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)

	edges := make([]domain.FavoriteEdge, 0, len(members))
	for _, m := range members {
		edge, ok := decodeEdge(m)
		if !ok {
			continue
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func (r *favoriteRepository) key(userID string) string {
	return fmt.Sprintf("%s%s", r.prefix, userID)
}

func encodeEdge(edge domain.FavoriteEdge) string {
	return fmt.Sprintf("%s:%s", edge.Type, edge.PackageID)
}

func decodeEdge(member string) (domain.FavoriteEdge, bool) {
	typeTag, id, ok := strings.Cut(member, ":")
	if !ok || typeTag == "" || id == "" {
		return domain.FavoriteEdge{}, false
	}
	return domain.FavoriteEdge{
		Type:      domain.PackageType(typeTag),
		PackageID: id,
	}, true
}
