package config

import (
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/media"
	"github.com/dmitrijs2005/offsync/internal/client/reachability"
)

// Config holds runtime settings for the offsync CLI.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	Owner               string
	DeviceID            string
	AccessToken         string
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	LogLevel            string
	S3                  media.Config
}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "offsync.db"
	c.OnlineCheckInterval = reachability.DefaultInterval
	c.SyncInterval = 15 * time.Minute
	c.LogLevel = "warn"
	c.S3.Region = "us-east-1"
}

// Load builds a Config from defaults, the JSON file named by -c/--config in
// args and the environment, in that order. Command-line flags are applied
// afterwards by the CLI.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
