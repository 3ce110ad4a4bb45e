package record_store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrStoreNotFound is returned by Records when the store has never been written.
var ErrStoreNotFound = errors.New("record store not found")

// CorruptError is returned by Records when the stored data cannot be decoded.
type CorruptError struct {
	Source string
	Err    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("record store %s is corrupt: %v", e.Source, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// ASNRecord is the persisted summary of the last successful fetch of one ASN.
type ASNRecord struct {
	ASN       string `json:"asn"`        // ASN is the normalized AS identifier.
	Name      string `json:"name"`       // Name is the AS name extracted from the lookup page.
	V4Count   int    `json:"v4_count"`   // V4Count is the number of IPv4 prefixes.
	V6Count   int    `json:"v6_count"`   // V6Count is the number of IPv6 prefixes.
	UpdatedAt string `json:"updated_at"` // UpdatedAt is the UTC time of the fetch, "2006-01-02 15:04:05".
}

// Store defines the operations on the ASN record store
type Store interface {
	// Records returns every stored record keyed by ASN.
	Records(ctx context.Context) (map[string]ASNRecord, error)
	// Upsert replaces the record stored under asn with rec. Other keys are left untouched.
	Upsert(ctx context.Context, asn string, rec ASNRecord) error
	IsHealthy() bool
}

// MemoryStore implements Store with an in-process map
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ASNRecord
}

// NewMemoryStore creates a memory store seeded with records, which may be nil
func NewMemoryStore(records map[string]ASNRecord) *MemoryStore {
	ms := &MemoryStore{records: make(map[string]ASNRecord, len(records))}
	for k, v := range records {
		ms.records[k] = v
	}
	return ms
}

// Records returns a copy of the stored records
func (ms *MemoryStore) Records(ctx context.Context) (map[string]ASNRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make(map[string]ASNRecord, len(ms.records))
	for k, v := range ms.records {
		result[k] = v
	}
	return result, nil
}

// Upsert stores rec under asn
func (ms *MemoryStore) Upsert(ctx context.Context, asn string, rec ASNRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.records[asn] = rec
	return nil
}

// IsHealthy always returns true for memory store
func (ms *MemoryStore) IsHealthy() bool {
	return true
}

// FallbackStore implements Store with primary and fallback stores
type FallbackStore struct {
	primary  Store
	fallback Store
}

// NewFallbackStore creates a new fallback store
func NewFallbackStore(primary, fallback Store) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
	}
}

// Records tries the primary store first, then the fallback
func (fs *FallbackStore) Records(ctx context.Context) (map[string]ASNRecord, error) {
	if fs.primary.IsHealthy() {
		records, err := fs.primary.Records(ctx)
		if err == nil {
			// Both stores receive every upsert, so a primary hit is authoritative
			return records, nil
		}
	}

	return fs.fallback.Records(ctx)
}

// Upsert writes to both stores
func (fs *FallbackStore) Upsert(ctx context.Context, asn string, rec ASNRecord) error {
	var primaryErr error

	if fs.primary.IsHealthy() {
		primaryErr = fs.primary.Upsert(ctx, asn, rec)
	}

	// Always write the fallback
	fallbackErr := fs.fallback.Upsert(ctx, asn, rec)

	if primaryErr != nil {
		return primaryErr
	}
	return fallbackErr
}

// IsHealthy returns true if either store is healthy
func (fs *FallbackStore) IsHealthy() bool {
	return fs.primary.IsHealthy() || fs.fallback.IsHealthy()
}

// IsPrimaryHealthy returns true if the primary store is healthy
func (fs *FallbackStore) IsPrimaryHealthy() bool {
	return fs.primary.IsHealthy()
}
