package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// discardLogger is a logger that discards all log messages
type discardLogger struct{}

func (l *discardLogger) Printf(ctx context.Context, format string, v ...interface{}) {
	// Discard all log messages
}

// defaultFiles are tried in order when no configuration file is named
var defaultFiles = []string{"config.yaml", "config.json", "config.toml"}

var (
	// Version information - read from build info (Go 1.18+)
	Version   string
	BuildTime string
	GitCommit string
)

func init() {
	initVersionInfo()

	// Suppress Redis client's internal error logging; store health checks report failures instead
	redis.SetLogger(&discardLogger{})
}

// Load reads the configuration file at path, applies ASNCIDR_* environment overrides and fills defaults.
// An empty path tries config.yaml, config.json and config.toml in the working directory and falls back
// to the defaults when none exists. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	var config Config

	if path == "" {
		for _, candidate := range defaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if err := loadConfigFromFile(path, &config); err != nil {
			return nil, err
		}
		log.Printf("✓ Configuration loaded from %s\n", path)
	}

	overrideConfigWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func loadConfigFromFile(path string, config *Config) error {
	configFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer configFile.Close()

	fileExt := strings.ToLower(filepath.Ext(configFile.Name()))
	switch fileExt {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(configFile).Decode(config)
		// An empty YAML file decodes to io.EOF, which means "all defaults"
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode YAML from configuration file: %w", err)
		}
	case ".json":
		if err = json.NewDecoder(configFile).Decode(config); err != nil {
			return fmt.Errorf("failed to decode JSON from configuration file: %w", err)
		}
	case ".toml":
		if err = toml.NewDecoder(configFile).Decode(config); err != nil {
			return fmt.Errorf("failed to decode TOML from configuration file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported configuration file format: %s", fileExt)
	}
	return nil
}

func overrideConfigWithEnv(config *Config) {
	// Override paths
	if outputDir := os.Getenv("ASNCIDR_OUTPUT_DIR"); outputDir != "" {
		config.Paths.OutputDir = outputDir
	}
	if snapshotFile := os.Getenv("ASNCIDR_SNAPSHOT_FILE"); snapshotFile != "" {
		config.Paths.SnapshotFile = snapshotFile
	}
	if storeFile := os.Getenv("ASNCIDR_STORE_FILE"); storeFile != "" {
		config.Paths.StoreFile = storeFile
	}
	if readmeFile := os.Getenv("ASNCIDR_README_FILE"); readmeFile != "" {
		config.Paths.ReadmeFile = readmeFile
	}
	if snapshotURL := os.Getenv("ASNCIDR_SNAPSHOT_URL"); snapshotURL != "" {
		config.SnapshotURL = snapshotURL
	}

	// Override fetch configuration
	if baseURL := os.Getenv("ASNCIDR_FETCH_BASE_URL"); baseURL != "" {
		config.Fetch.BaseURL = baseURL
	}
	if timeout := os.Getenv("ASNCIDR_FETCH_TIMEOUT"); timeout != "" {
		if timeoutInt, err := strconv.Atoi(timeout); err == nil {
			config.Fetch.Timeout = timeoutInt
		}
	}
	if minDelay := os.Getenv("ASNCIDR_FETCH_MIN_DELAY_MS"); minDelay != "" {
		if delayInt, err := strconv.Atoi(minDelay); err == nil {
			config.Fetch.MinDelayMs = delayInt
		}
	}
	if maxDelay := os.Getenv("ASNCIDR_FETCH_MAX_DELAY_MS"); maxDelay != "" {
		if delayInt, err := strconv.Atoi(maxDelay); err == nil {
			config.Fetch.MaxDelayMs = delayInt
		}
	}
	if proxyServer := os.Getenv("ASNCIDR_PROXY_SERVER"); proxyServer != "" {
		config.ProxyServer = proxyServer
	}
	if proxyUsername := os.Getenv("ASNCIDR_PROXY_USERNAME"); proxyUsername != "" {
		config.ProxyUsername = proxyUsername
	}
	if proxyPassword := os.Getenv("ASNCIDR_PROXY_PASSWORD"); proxyPassword != "" {
		config.ProxyPassword = proxyPassword
	}

	// Override store configuration
	if backend := os.Getenv("ASNCIDR_STORE_BACKEND"); backend != "" {
		config.Store.Backend = backend
	}
	if redisAddr := os.Getenv("ASNCIDR_REDIS_ADDR"); redisAddr != "" {
		config.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("ASNCIDR_REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if redisDB := os.Getenv("ASNCIDR_REDIS_DB"); redisDB != "" {
		if dbInt, err := strconv.Atoi(redisDB); err == nil {
			config.Redis.DB = dbInt
		}
	}
	if redisKey := os.Getenv("ASNCIDR_REDIS_KEY"); redisKey != "" {
		config.Redis.Key = redisKey
	}

	if textfile := os.Getenv("ASNCIDR_METRICS_TEXTFILE"); textfile != "" {
		config.Metrics.Textfile = textfile
	}
	if logFile := os.Getenv("ASNCIDR_LOG_FILE"); logFile != "" {
		config.Log.File = logFile
	}
}

// applyDefaults sets default values for everything left unset by the file and the environment
func applyDefaults(config *Config) {
	if config.Paths.OutputDir == "" {
		config.Paths.OutputDir = "ASN_CIDR"
	}
	if config.Paths.SnapshotFile == "" {
		config.Paths.SnapshotFile = "ipinfo_lite.csv"
	}
	if config.Paths.StoreFile == "" {
		config.Paths.StoreFile = "asn_data.json"
	}
	if config.Paths.ReadmeFile == "" {
		config.Paths.ReadmeFile = "README.md"
	}

	if config.Fetch.BaseURL == "" {
		config.Fetch.BaseURL = "https://bgp.he.net"
	}
	if config.Fetch.Timeout <= 0 {
		config.Fetch.Timeout = 30
	}
	// Both bounds unset means the 2s-5s window; a negative bound turns the pause off
	if config.Fetch.MinDelayMs == 0 && config.Fetch.MaxDelayMs == 0 {
		config.Fetch.MinDelayMs = 2000
		config.Fetch.MaxDelayMs = 5000
	}
	if config.Fetch.MinDelayMs < 0 {
		config.Fetch.MinDelayMs = 0
	}
	if config.Fetch.MaxDelayMs < config.Fetch.MinDelayMs {
		config.Fetch.MaxDelayMs = config.Fetch.MinDelayMs
	}

	if config.Store.Backend == "" {
		config.Store.Backend = "file"
	}
	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
	if config.Redis.Key == "" {
		config.Redis.Key = "asn_cidr:records"
	}

	if config.Log.MaxSizeMB == 0 {
		config.Log.MaxSizeMB = 10
	}
	if config.Log.MaxBackups == 0 {
		config.Log.MaxBackups = 3
	}
	if config.Log.MaxAgeDays == 0 {
		config.Log.MaxAgeDays = 28
	}
}

// FetchTimeout returns the lookup request timeout
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.Timeout) * time.Second
}

// FetchDelay returns the bounds of the randomized pause taken before the lookup request
func (c *Config) FetchDelay() (time.Duration, time.Duration) {
	return time.Duration(c.Fetch.MinDelayMs) * time.Millisecond, time.Duration(c.Fetch.MaxDelayMs) * time.Millisecond
}

// NewHTTPClient builds the client used for the lookup request, routed through the proxy server if one is set
func NewHTTPClient(c *Config) (*http.Client, error) {
	client := &http.Client{
		Timeout: c.FetchTimeout(),
	}

	if c.ProxyServer == "" {
		return client, nil
	}

	proxyURL, err := url.Parse(c.ProxyServer)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy server %q: %w", c.ProxyServer, err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, errors.New("proxy server must be an absolute URL such as http://127.0.0.1:8080")
	}
	if c.ProxyUsername != "" {
		proxyURL.User = url.UserPassword(c.ProxyUsername, c.ProxyPassword)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	client.Transport = transport

	return client, nil
}

// NewRedisClient builds the Redis client for the record store mirror
func NewRedisClient(c *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            c.Redis.Addr,
		Password:        c.Redis.Password,
		DB:              c.Redis.DB,
		PoolSize:        2,
		MinIdleConns:    0,
		MaxRetries:      1,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
		PoolTimeout:     2 * time.Second,
	})
}

// initVersionInfo reads version information from Go build info
// This works automatically with `go build` (Go 1.18+)
func initVersionInfo() {
	Version = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	// Get module version
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	// Get VCS info from build settings
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				GitCommit = setting.Value[:7] // short commit hash
			} else {
				GitCommit = setting.Value
			}
		case "vcs.time":
			BuildTime = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				GitCommit += "-dirty"
			}
		}
	}
}
