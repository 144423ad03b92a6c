package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/store"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const vocabularyKey = "recommender:vocabulary"

// VocabularyCache keeps the attribute vocabulary in Redis so every instance
// shares one copy. When Redis is absent or failing, a process-local cache
// takes over.
type VocabularyCache struct {
	rdb    *redis.Client
	local  *gocache.Cache
	ttl    time.Duration
	logger logger.ILogger
}

func NewVocabularyCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *VocabularyCache {
	return &VocabularyCache{
		rdb:    rdb,
		local:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: log,
	}
}

func (c *VocabularyCache) Get(ctx context.Context) (store.Vocabulary, bool) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, vocabularyKey).Bytes()
		switch {
		case err == nil:
			var vocab store.Vocabulary
			if jsonErr := json.Unmarshal(raw, &vocab); jsonErr == nil {
				return vocab, true
			}
			c.logger.Warn("CATALOG", "Discarding malformed cached vocabulary", nil)
		case errors.Is(err, redis.Nil):
		default:
			c.logger.Warn("CATALOG", "Redis read failed, using local cache", map[string]interface{}{"error": err.Error()})
		}
	}

	if v, ok := c.local.Get(vocabularyKey); ok {
		return v.(store.Vocabulary), true
	}
	return nil, false
}

func (c *VocabularyCache) Set(ctx context.Context, vocab store.Vocabulary) {
	c.local.Set(vocabularyKey, vocab, c.ttl)
	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(vocab)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, vocabularyKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("CATALOG", "Redis write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate drops both copies, e.g. after a catalog update.
func (c *VocabularyCache) Invalidate(ctx context.Context) {
	c.local.Delete(vocabularyKey)
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, vocabularyKey).Err(); err != nil {
			c.logger.Warn("CATALOG", "Redis delete failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
