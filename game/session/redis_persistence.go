package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPersistence implements SessionPersistence on Redis. Each session is
// a JSON value under <prefix>:session:<id>; the set <prefix>:sessions
// indexes the ids.
type RedisPersistence struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisPersistence connects to Redis and verifies the connection
func NewRedisPersistence(opts RedisOptions) (*RedisPersistence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	rp := NewRedisPersistenceWithClient(client, opts.KeyPrefix)
	ctx, cancel := rp.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rp, nil
}

// NewRedisPersistenceWithClient wraps an existing client
func NewRedisPersistenceWithClient(client *redis.Client, prefix string) *RedisPersistence {
	if prefix == "" {
		prefix = "decor"
	}
	return &RedisPersistence{
		client:  client,
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

func (rp *RedisPersistence) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), rp.timeout)
}

func (rp *RedisPersistence) key(id string) string {
	return fmt.Sprintf("%s:session:%s", rp.prefix, id)
}

func (rp *RedisPersistence) indexKey() string {
	return rp.prefix + ":sessions"
}

// Save stores the session and adds it to the index
func (rp *RedisPersistence) Save(data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	ctx, cancel := rp.context()
	defer cancel()

	pipe := rp.client.TxPipeline()
	pipe.Set(ctx, rp.key(data.ID), payload, 0)
	pipe.SAdd(ctx, rp.indexKey(), data.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session to redis: %w", err)
	}
	return nil
}

// Load retrieves a session
func (rp *RedisPersistence) Load(id string) (*PersistedSessionData, error) {
	ctx, cancel := rp.context()
	defer cancel()

	payload, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &data, nil
}

// Delete removes a session and its index entry
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := rp.context()
	defer cancel()

	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if err := rp.client.SRem(ctx, rp.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to update session index: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all indexed session IDs, sorted
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := rp.context()
	defer cancel()

	ids, err := rp.client.SMembers(ctx, rp.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists checks if a session is stored
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := rp.context()
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

// Close closes the Redis client
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}
