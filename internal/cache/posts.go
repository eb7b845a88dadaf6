package cache

import (
	"context"
	"encoding/json"
	"time"

	"inkboard/internal/models"
)

// PostCollectionKey holds the full serialized post collection. The collection
// is small enough (a demo-scale catalog) that caching it whole keeps reads
// cheap without per-post key bookkeeping.
const PostCollectionKey = "posts:all"

// PostCollectionTTL bounds staleness when an invalidation is missed.
const PostCollectionTTL = 5 * time.Minute

// GetPostCollection returns the cached collection and whether it was present.
// A nil client, a miss, or a decode failure all report absence.
func GetPostCollection(ctx context.Context) ([]models.Post, bool) {
	if client == nil {
		return nil, false
	}
	s, err := client.Get(ctx, PostCollectionKey).Result()
	if err != nil {
		// redis.Nil (miss) and real errors both degrade to a re-read.
		return nil, false
	}
	var posts []models.Post
	if err := json.Unmarshal([]byte(s), &posts); err != nil {
		return nil, false
	}
	return posts, true
}

// SetPostCollection stores the collection best-effort.
func SetPostCollection(ctx context.Context, posts []models.Post) {
	if client == nil {
		return
	}
	b, err := json.Marshal(posts)
	if err != nil {
		return
	}
	client.Set(ctx, PostCollectionKey, b, PostCollectionTTL)
}

// InvalidatePostCollection drops the cached collection after a store mutation.
func InvalidatePostCollection(ctx context.Context) {
	if client != nil {
		client.Del(ctx, PostCollectionKey)
	}
}
