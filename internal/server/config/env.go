package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr      = "OFFSYNC_GRPC_ADDR"
	EnvHTTPAddr      = "OFFSYNC_HTTP_ADDR"
	EnvDatabaseDSN   = "OFFSYNC_DATABASE_DSN"
	EnvJWTSecret     = "OFFSYNC_JWT_SECRET"
	EnvTokenValidity = "OFFSYNC_TOKEN_VALIDITY"
	EnvLogLevel      = "OFFSYNC_LOG_LEVEL"
	EnvFile          = "OFFSYNC_ENV_FILE"
)

// parseEnv loads a .env file (or the one named by OFFSYNC_ENV_FILE) without
// overriding variables that are already set, then overlays cfg.
func parseEnv(cfg *Config) {
	file := os.Getenv(EnvFile)
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.EndpointAddrGRPC, os.Getenv(EnvGRPCAddr))
	setString(&cfg.EndpointAddrHTTP, os.Getenv(EnvHTTPAddr))
	setString(&cfg.DatabaseDSN, os.Getenv(EnvDatabaseDSN))
	setString(&cfg.SecretKey, os.Getenv(EnvJWTSecret))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))

	if v := os.Getenv(EnvTokenValidity); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.AccessTokenValidityDuration = d
	}
}
