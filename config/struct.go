package config

import "github.com/KincaidYang/asn_cidr/utils"

// Config represents the configuration for the jobs.
type Config struct {
	// Paths holds the file-system artifacts the jobs share.
	Paths struct {
		OutputDir    string `json:"outputDir" yaml:"outputDir" toml:"outputDir"`          // OutputDir is where route-list files are written.
		SnapshotFile string `json:"snapshotFile" yaml:"snapshotFile" toml:"snapshotFile"` // SnapshotFile is the CSV snapshot read by the extractor.
		StoreFile    string `json:"storeFile" yaml:"storeFile" toml:"storeFile"`          // StoreFile is the JSON record store.
		ReadmeFile   string `json:"readmeFile" yaml:"readmeFile" toml:"readmeFile"`       // ReadmeFile is the rendered Markdown report.
	} `json:"paths" yaml:"paths" toml:"paths"`
	// SnapshotURL is downloaded to Paths.SnapshotFile when the snapshot is missing. Empty disables downloading.
	SnapshotURL string `json:"snapshotURL" yaml:"snapshotURL" toml:"snapshotURL"`
	// Fetch holds the settings of the bgp.he.net request.
	Fetch struct {
		BaseURL    string `json:"baseURL" yaml:"baseURL" toml:"baseURL"`          // BaseURL is the lookup site root.
		Timeout    int    `json:"timeout" yaml:"timeout" toml:"timeout"`          // Timeout is the request timeout, in seconds.
		MinDelayMs int    `json:"minDelayMs" yaml:"minDelayMs" toml:"minDelayMs"` // MinDelayMs is the lower bound of the pre-request pause.
		MaxDelayMs int    `json:"maxDelayMs" yaml:"maxDelayMs" toml:"maxDelayMs"` // MaxDelayMs is the upper bound of the pre-request pause.
	} `json:"fetch" yaml:"fetch" toml:"fetch"`
	// ProxyServer is an optional HTTP proxy for the lookup request.
	ProxyServer string `json:"proxyServer" yaml:"proxyServer" toml:"proxyServer"`
	// ProxyUsername is the username for the proxy server.
	ProxyUsername string `json:"proxyUsername" yaml:"proxyUsername" toml:"proxyUsername"`
	// ProxyPassword is the password for the proxy server.
	ProxyPassword string `json:"proxyPassword" yaml:"proxyPassword" toml:"proxyPassword"`
	// Store selects the record store backend.
	Store struct {
		Backend string `json:"backend" yaml:"backend" toml:"backend"` // Backend is "file" or "redis".
	} `json:"store" yaml:"store" toml:"store"`
	// Redis holds the configuration for the Redis mirror of the record store.
	Redis struct {
		Addr     string `json:"addr" yaml:"addr" toml:"addr"`             // Addr is the address of the Redis server.
		Password string `json:"password" yaml:"password" toml:"password"` // Password is the password for the Redis server.
		DB       int    `json:"db" yaml:"db" toml:"db"`                   // DB is the database number for the Redis server.
		Key      string `json:"key" yaml:"key" toml:"key"`                // Key is the hash holding one field per ASN.
	} `json:"redis" yaml:"redis" toml:"redis"`
	// Metrics controls the Prometheus textfile output.
	Metrics struct {
		Textfile string `json:"textfile" yaml:"textfile" toml:"textfile"` // Textfile is written after each run when set.
	} `json:"metrics" yaml:"metrics" toml:"metrics"`
	// Log controls log output.
	Log utils.LogOptions `json:"log" yaml:"log" toml:"log"`
}
