// Package cache implements the short-lived read-through cache in front of
// the user listing. Keys carry the full query shape so paginated requests
// never collide on one entry.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jbarakanov/videohost/internal/server/models"
)

// UserPages caches pages of the user listing. A miss is (nil, false, nil);
// backend failures come back as errors so the caller can degrade to a
// direct store read.
type UserPages interface {
	GetUserPage(ctx context.Context, key string) ([]*models.User, bool, error)
	PutUserPage(ctx context.Context, key string, page []*models.User, ttl time.Duration) error
}

// UserPageKey builds the cache key for one listing page.
func UserPageKey(offset, limit int) string {
	return fmt.Sprintf("users:%d:%d", offset, limit)
}
