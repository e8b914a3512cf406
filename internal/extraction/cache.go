package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "extraction:acquired:"

// AcquisitionCache stores acquired content for a short while so that a
// resubmitted URL does not hit the scraping providers again.
type AcquisitionCache interface {
	Get(ctx context.Context, key string) (*AcquiredContent, bool, error)
	Set(ctx context.Context, key string, content *AcquiredContent, ttl time.Duration) error
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache keeps entries in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*AcquiredContent, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read acquisition from Redis: %w", err)
	}
	var content AcquiredContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached acquisition: %w", err)
	}
	return &content, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, content *AcquiredContent, ttl time.Duration) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal acquisition: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store acquisition in Redis: %w", err)
	}
	return nil
}

// BadgerCache is an embedded alternative for single-node deployments.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (or creates) a store at path. An empty path keeps
// everything in memory.
func OpenBadgerCache(path string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (b *BadgerCache) Close() error {
	return b.db.Close()
}

func (b *BadgerCache) Get(_ context.Context, key string) (*AcquiredContent, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read acquisition from badger: %w", err)
	}
	var content AcquiredContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached acquisition: %w", err)
	}
	return &content, true, nil
}

func (b *BadgerCache) Set(_ context.Context, key string, content *AcquiredContent, ttl time.Duration) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal acquisition: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}
