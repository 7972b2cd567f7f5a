package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobscout/internal/domain/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const keyPrefix = "jobscout:search:"

type searcher interface {
	Search(ctx context.Context, company, title string) (models.SearchResult, error)
}

type resultStore interface {
	get(ctx context.Context, key string) (models.SearchResult, bool, error)
	set(ctx context.Context, key string, result models.SearchResult) error
}

// Cached memoizes search results, including misses, so the same company and
// title are looked up once per ttl.
type Cached struct {
	next  searcher
	store resultStore
}

func NewCached(next searcher, ttl time.Duration) *Cached {
	return &Cached{next: next, store: memoryStore{cache: gocache.New(ttl, 2*ttl)}}
}

func NewRedisCached(next searcher, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, store: redisStore{client: client, ttl: ttl}}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *Cached) Search(ctx context.Context, company, title string) (models.SearchResult, error) {

	key := cacheKey(company, title)

	result, found, err := c.store.get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("search cache read failed")
	} else if found {
		return result, nil
	}

	result, err = c.next.Search(ctx, company, title)
	if err != nil {
		return result, err
	}

	if err := c.store.set(ctx, key, result); err != nil {
		log.WithError(err).Warn("search cache write failed")
	}
	return result, nil
}

func cacheKey(company, title string) string {
	normalize := func(s string) string { return strings.Join(strings.Fields(strings.ToLower(s)), " ") }
	return keyPrefix + normalize(company) + "|" + normalize(title)
}

type memoryStore struct {
	cache *gocache.Cache
}

func (s memoryStore) get(_ context.Context, key string) (models.SearchResult, bool, error) {
	if value, found := s.cache.Get(key); found {
		return value.(models.SearchResult), true, nil
	}
	return models.SearchResult{}, false, nil
}

func (s memoryStore) set(_ context.Context, key string, result models.SearchResult) error {
	s.cache.Set(key, result, gocache.DefaultExpiration)
	return nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s redisStore) get(ctx context.Context, key string) (models.SearchResult, bool, error) {

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SearchResult{}, false, nil
	}
	if err != nil {
		return models.SearchResult{}, false, err
	}

	var result models.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return models.SearchResult{}, false, fmt.Errorf("error decoding cached result: %w", err)
	}
	return result, true, nil
}

func (s redisStore) set(ctx context.Context, key string, result models.SearchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}
