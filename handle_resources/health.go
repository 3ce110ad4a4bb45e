package handle_resources

import (
	"runtime"
	"time"

	"github.com/KincaidYang/asn_cidr/config"
	"github.com/KincaidYang/asn_cidr/record_store"
)

// startTime records the process start time for uptime calculation
var startTime = time.Now()

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks"`
	Runtime   RuntimeInfo      `json:"runtime"`
}

// Check represents a single health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// RuntimeInfo represents runtime information
type RuntimeInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
	GoVersion string `json:"goVersion"`
}

// isRedisHealthy checks if the Redis mirror of the record store is healthy
func isRedisHealthy(store record_store.Store) bool {
	if fs, ok := store.(*record_store.FallbackStore); ok {
		return fs.IsPrimaryHealthy()
	}
	_, ok := store.(*record_store.RedisStore)
	return ok && store.IsHealthy()
}

// getStoreCheck returns the record store health check result
func getStoreCheck(store record_store.Store) Check {
	switch {
	case store == nil:
		return Check{Status: "fail", Message: "not initialized"}
	case isRedisHealthy(store):
		return Check{Status: "ok", Message: "redis"}
	}

	if _, ok := store.(*record_store.FallbackStore); ok {
		return Check{Status: "warning", Message: "redis unavailable, file only"}
	}
	if fileStore, ok := store.(*record_store.FileStore); ok {
		return Check{Status: "ok", Message: "file " + fileStore.Path()}
	}
	if store.IsHealthy() {
		return Check{Status: "ok"}
	}
	return Check{Status: "fail"}
}

// Health reports the state of the record store along with build information.
// The status is "ok" unless the store cannot be used at all.
func Health(store record_store.Store) HealthStatus {
	storeCheck := getStoreCheck(store)

	overallStatus := "ok"
	if storeCheck.Status == "fail" {
		overallStatus = "unavailable"
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Checks: map[string]Check{
			"store": storeCheck,
		},
		Runtime: Info(),
	}
}

// Info returns the build and runtime versions
func Info() RuntimeInfo {
	info := RuntimeInfo{
		Version:   config.Version,
		GoVersion: runtime.Version(),
	}

	// Only include build info if available
	if config.BuildTime != "unknown" {
		info.BuildTime = config.BuildTime
	}
	if config.GitCommit != "unknown" {
		info.GitCommit = config.GitCommit
	}
	return info
}
