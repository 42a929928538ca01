// Package config handles configuration for the desktop client,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the SkyDrive desktop client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend REST endpoint.
//   - SyncInterval: how often the background sync loop polls for changes.
//   - MirrorDir: local directory mirroring the cloud contents.
//   - LocalDBPath: path of the client-side SQLite database.
type Config struct {
	ServerEndpointAddr string
	SyncInterval       time.Duration
	MirrorDir          string
	LocalDBPath        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.SyncInterval = 30 * time.Second
	c.MirrorDir = "SkyDrive"
	c.LocalDBPath = "skydrive.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
