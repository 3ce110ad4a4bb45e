package record_store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestRedisStore connects to the Redis named by ASNCIDR_TEST_REDIS_ADDR (default localhost:6379)
// and skips the test when nothing answers.
func newTestRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()

	addr := os.Getenv("ASNCIDR_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 500 * time.Millisecond})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	key := fmt.Sprintf("asn_cidr:test:%d", time.Now().UnixNano())
	t.Cleanup(func() { client.Del(context.Background(), key) })

	return NewRedisStore(client, key), client
}

func TestRedisStoreUpsertAndRecords(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	if _, err := store.Records(ctx); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound for an empty hash, got %v", err)
	}

	first := ASNRecord{ASN: "AS1", Name: "One", V4Count: 3, V6Count: 1, UpdatedAt: "2026-01-01 00:00:00"}
	second := ASNRecord{ASN: "AS2", Name: "Two", UpdatedAt: "2026-01-01 00:00:00"}
	for _, rec := range []ASNRecord{first, second} {
		if err := store.Upsert(ctx, rec.ASN, rec); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	replacement := ASNRecord{ASN: "AS1", Name: "Uno", V4Count: 9, UpdatedAt: "2026-02-01 00:00:00"}
	if err := store.Upsert(ctx, "AS1", replacement); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records returned error: %v", err)
	}
	if records["AS1"] != replacement {
		t.Errorf("expected AS1 to be replaced, got %+v", records["AS1"])
	}
	if records["AS2"] != second {
		t.Errorf("AS2 changed: %+v", records["AS2"])
	}
}

func TestRedisStoreCorruptField(t *testing.T) {
	store, client := newTestRedisStore(t)
	ctx := context.Background()

	if err := client.HSet(ctx, store.key, "AS1", "{broken").Err(); err != nil {
		t.Fatal(err)
	}

	var corruptErr *CorruptError
	if _, err := store.Records(ctx); !errors.As(err, &corruptErr) {
		t.Errorf("expected *CorruptError, got %v", err)
	}
}
