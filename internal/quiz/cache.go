package quiz

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 24 * time.Hour

// Cache is a read-through store of validated quiz payloads, keyed by topic
// id and a digest of the extracted context. Regenerating a quiz over
// unchanged notes hits the cache instead of the service. Only payloads that
// already passed validation are written, so a hit is trusted.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a quiz cache. A zero ttl uses the default of 24h.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached questions for this topic/context, if any. Cache
// errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, topicID, quizContext string) ([]Question, bool) {
	data, err := c.client.Get(ctx, cacheKey(topicID, quizContext)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("quiz cache read failed", "error", err)
		}
		return nil, false
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		slog.Debug("quiz cache entry corrupt, ignoring", "error", err)
		return nil, false
	}
	if len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

// Put stores validated questions. Write failures are logged and ignored;
// the cache is an optimization, not a store of record.
func (c *Cache) Put(ctx context.Context, topicID, quizContext string, questions []Question) {
	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(topicID, quizContext), data, c.ttl).Err(); err != nil {
		slog.Debug("quiz cache write failed", "error", err)
	}
}

func cacheKey(topicID, quizContext string) string {
	digest := sha256.Sum256([]byte(quizContext))
	return fmt.Sprintf("quiz:%s:%x", topicID, digest[:8])
}
