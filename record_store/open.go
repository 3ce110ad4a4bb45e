package record_store

import (
	"fmt"
	"log"

	"github.com/KincaidYang/asn_cidr/config"
)

// Open returns the store selected by the configuration and a function releasing its connections.
// The "redis" backend mirrors every upsert into the JSON file as well, so the file stays complete.
func Open(cfg *config.Config) (Store, func(), error) {
	fileStore := NewFileStore(cfg.Paths.StoreFile)

	switch cfg.Store.Backend {
	case "file":
		return fileStore, func() {}, nil
	case "redis":
		client := config.NewRedisClient(cfg)
		redisStore := NewRedisStore(client, cfg.Redis.Key)
		if redisStore.IsHealthy() {
			log.Println("✓ Redis record store initialized successfully")
		} else {
			log.Printf("⚠ Redis unavailable, using %s only\n", fileStore.Path())
		}
		return NewFallbackStore(redisStore, fileStore), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}
