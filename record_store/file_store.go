package record_store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// FileStore implements Store as a single JSON object file mapping ASN to record.
// There is no locking: two processes upserting at once race, and the last rename wins for the whole file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the JSON file
func (s *FileStore) Path() string {
	return s.path
}

// Records decodes the whole file. A missing file yields ErrStoreNotFound, undecodable content a *CorruptError.
func (s *FileStore) Records(ctx context.Context) (map[string]ASNRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read record store %s: %w", s.path, err)
	}

	var records map[string]ASNRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Source: s.path, Err: err}
	}
	if records == nil {
		records = make(map[string]ASNRecord)
	}
	return records, nil
}

// Upsert rewrites the file with the entry for asn replaced by rec.
// An unreadable or corrupt file is treated as an empty store. Entries for other ASNs are carried over as raw JSON.
func (s *FileStore) Upsert(ctx context.Context, asn string, rec ASNRecord) error {
	entries, err := s.loadRaw()
	if err != nil {
		log.Printf("⚠ Record store %s unreadable, starting from an empty store: %v\n", s.path, err)
		entries = make(map[string]json.RawMessage)
	}

	value, err := marshalJSON(rec, "")
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", asn, err)
	}
	entries[asn] = value

	data, err := marshalJSON(entries, "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record store: %w", err)
	}

	return writeFileAtomic(s.path, data)
}

// IsHealthy always returns true; failures surface from Records and Upsert
func (s *FileStore) IsHealthy() bool {
	return true
}

func (s *FileStore) loadRaw() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	} else if err != nil {
		return nil, err
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	return entries, nil
}

// marshalJSON encodes v without HTML escaping, so names like "AT&T" stay readable in the file
func marshalJSON(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	if indent == "" {
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place,
// so a crash mid-write leaves the previous file intact.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
