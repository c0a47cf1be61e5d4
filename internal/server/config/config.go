// Package config handles configuration for the remote store server: defaults,
// an optional JSON file, environment variables (optionally from a .env file)
// and command-line flags, applied in that order.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the offsync server.
//
// An empty DatabaseDSN makes the server keep rows in memory, which is handy
// for local development and tests.
type Config struct {
	EndpointAddrGRPC            string
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig builds a Config: defaults, then JSON, then environment, then
// flags. Invalid input panics; the server cannot start without a config.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		panic(err)
	}
	return cfg
}
