package handle_resources

import (
	"runtime"
	"strings"
	"testing"

	"github.com/KincaidYang/asn_cidr/record_store"
)

// unhealthyStore reports itself as down
type unhealthyStore struct {
	*record_store.MemoryStore
}

func (s unhealthyStore) IsHealthy() bool {
	return false
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name          string
		store         record_store.Store
		status        string
		checkStatus   string
		checkContains string
	}{
		{"file", record_store.NewFileStore("asn_data.json"), "ok", "ok", "asn_data.json"},
		{"redis healthy", record_store.NewFallbackStore(record_store.NewMemoryStore(nil), record_store.NewFileStore("asn_data.json")), "ok", "ok", "redis"},
		{"redis down", record_store.NewFallbackStore(unhealthyStore{record_store.NewMemoryStore(nil)}, record_store.NewFileStore("asn_data.json")), "ok", "warning", "file only"},
		{"memory", record_store.NewMemoryStore(nil), "ok", "ok", ""},
		{"unhealthy", unhealthyStore{record_store.NewMemoryStore(nil)}, "unavailable", "fail", ""},
		{"nil", nil, "unavailable", "fail", "not initialized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Health(tt.store)
			if status.Status != tt.status {
				t.Errorf("expected status %q, got %q", tt.status, status.Status)
			}
			check := status.Checks["store"]
			if check.Status != tt.checkStatus {
				t.Errorf("expected store check %q, got %q", tt.checkStatus, check.Status)
			}
			if !strings.Contains(check.Message, tt.checkContains) {
				t.Errorf("expected store check message to contain %q, got %q", tt.checkContains, check.Message)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected Go version %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.Version == "" {
		t.Error("expected a version")
	}
}
