package record_store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store as one Redis hash with a JSON encoded field per ASN
type RedisStore struct {
	client  *redis.Client
	key     string
	healthy bool
	mu      sync.RWMutex
}

// NewRedisStore creates a Redis store on the hash key and checks the connection once
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	rs := &RedisStore{
		client: client,
		key:    key,
	}
	rs.checkHealth()
	return rs
}

// Records returns every field of the hash. An empty or absent hash yields ErrStoreNotFound.
func (rs *RedisStore) Records(ctx context.Context) (map[string]ASNRecord, error) {
	if !rs.IsHealthy() {
		return nil, fmt.Errorf("redis store %s is unavailable", rs.key)
	}

	fields, err := rs.client.HGetAll(ctx, rs.key).Result()
	if err != nil {
		rs.setHealthy(false)
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: redis hash %s", ErrStoreNotFound, rs.key)
	}

	records := make(map[string]ASNRecord, len(fields))
	for asn, value := range fields {
		var rec ASNRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			return nil, &CorruptError{Source: fmt.Sprintf("redis hash %s field %s", rs.key, asn), Err: err}
		}
		records[asn] = rec
	}
	return records, nil
}

// Upsert sets the hash field for asn, replacing any previous value
func (rs *RedisStore) Upsert(ctx context.Context, asn string, rec ASNRecord) error {
	if !rs.IsHealthy() {
		return fmt.Errorf("redis store %s is unavailable", rs.key)
	}

	value, err := marshalJSON(rec, "")
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", asn, err)
	}

	if err := rs.client.HSet(ctx, rs.key, asn, string(value)).Err(); err != nil {
		rs.setHealthy(false)
		return err
	}
	return nil
}

// IsHealthy returns the health status of Redis connection
func (rs *RedisStore) IsHealthy() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.healthy
}

// setHealthy safely sets the healthy status
func (rs *RedisStore) setHealthy(healthy bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.healthy = healthy
}

// checkHealth performs a health check on Redis
func (rs *RedisStore) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := rs.client.Ping(ctx).Result(); err != nil {
		rs.setHealthy(false)
		log.Printf("⚠ Redis unavailable: %v\n", err)
		return
	}
	rs.setHealthy(true)
}
