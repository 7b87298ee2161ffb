// Package queue implements the durable FIFOs and query cache, backed
// by Redis lists (RPUSH/LPOP for the crawl queue, RPUSH/BLPOP for the
// indexing queue) and a TTL-keyed cache namespace.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	crawlQueueKey    = "crawl_queue"
	indexingQueueKey = "indexing_queue"
	cacheKeyPrefix   = "cache:"
)

// ErrEmpty is returned by the non-blocking crawl-queue pop when there
// is nothing to fetch.
var ErrEmpty = errors.New("queue: empty")

// Config addresses the Redis instance backing the queue and cache.
type Config struct {
	Addr string
	DB   int

	ConnectRetries int
	ConnectBackoff time.Duration
}

// Queue wraps a Redis client with the two FIFOs and the cache
// namespace.
type Queue struct {
	rdb *redis.Client
}

// New connects to Redis with bounded retry; a failure to connect after
// ConnectRetries attempts is fatal at startup.
func New(ctx context.Context, cfg Config) (*Queue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return &Queue{rdb: rdb}, nil
		}
		if attempt == retries {
			return nil, fmt.Errorf("queue: connect after %d attempts: %w", retries, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectBackoff):
		}
	}
	return nil, err
}

// Close releases the Redis client.
func (q *Queue) Close() error { return q.rdb.Close() }

// SeedIfEmpty pushes url onto the crawl queue only if the queue is
// currently empty, so a fresh deployment has something to crawl.
func (q *Queue) SeedIfEmpty(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	n, err := q.rdb.LLen(ctx, crawlQueueKey).Result()
	if err != nil {
		return fmt.Errorf("queue: check crawl queue length: %w", err)
	}
	if n > 0 {
		return nil
	}
	return q.PushCrawlURL(ctx, url)
}

// PushCrawlURL appends a URL to the crawl queue.
func (q *Queue) PushCrawlURL(ctx context.Context, url string) error {
	if err := q.rdb.RPush(ctx, crawlQueueKey, url).Err(); err != nil {
		return fmt.Errorf("queue: push crawl url: %w", err)
	}
	return nil
}

// PopCrawlURL performs a non-blocking pop from the head of the crawl
// queue. Callers sleep QUEUE_POLL_INTERVAL and retry when ErrEmpty is
// returned.
func (q *Queue) PopCrawlURL(ctx context.Context) (string, error) {
	url, err := q.rdb.LPop(ctx, crawlQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", fmt.Errorf("queue: pop crawl url: %w", err)
	}
	return url, nil
}

// PushIndexJob appends a doc id to the indexing queue.
func (q *Queue) PushIndexJob(ctx context.Context, docID int64) error {
	if err := q.rdb.RPush(ctx, indexingQueueKey, strconv.FormatInt(docID, 10)).Err(); err != nil {
		return fmt.Errorf("queue: push index job: %w", err)
	}
	return nil
}

// PopIndexJob performs a blocking pop with indefinite timeout from the
// indexing queue.
func (q *Queue) PopIndexJob(ctx context.Context) (int64, error) {
	result, err := q.rdb.BLPop(ctx, 0, indexingQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: pop index job: %w", err)
	}
	// BLPop returns [key, value].
	if len(result) != 2 {
		return 0, fmt.Errorf("queue: unexpected BLPOP reply: %v", result)
	}
	docID, err := strconv.ParseInt(result[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("queue: malformed index job payload %q: %w", result[1], err)
	}
	return docID, nil
}

// CacheGet fetches a cached serialized result list for a normalized
// query string.
func (q *Queue) CacheGet(ctx context.Context, query string) (string, bool, error) {
	v, err := q.rdb.Get(ctx, cacheKeyPrefix+query).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("queue: cache get: %w", err)
	}
	return v, true, nil
}

// CacheSet stores a serialized result list with a TTL.
func (q *Queue) CacheSet(ctx context.Context, query, value string, ttl time.Duration) error {
	if err := q.rdb.Set(ctx, cacheKeyPrefix+query, value, ttl).Err(); err != nil {
		return fmt.Errorf("queue: cache set: %w", err)
	}
	return nil
}
