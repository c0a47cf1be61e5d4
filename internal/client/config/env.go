package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvServer              = "OFFSYNC_SERVER"
	EnvDatabase            = "OFFSYNC_DB"
	EnvOwner               = "OFFSYNC_OWNER"
	EnvDeviceID            = "OFFSYNC_DEVICE_ID"
	EnvToken               = "OFFSYNC_TOKEN"
	EnvOnlineCheckInterval = "OFFSYNC_ONLINE_CHECK_INTERVAL"
	EnvSyncInterval        = "OFFSYNC_SYNC_INTERVAL"
	EnvLogLevel            = "OFFSYNC_LOG_LEVEL"
	EnvS3Bucket            = "OFFSYNC_S3_BUCKET"
	EnvS3Region            = "OFFSYNC_S3_REGION"
	EnvS3Endpoint          = "OFFSYNC_S3_ENDPOINT"
	EnvS3AccessKey         = "OFFSYNC_S3_ACCESS_KEY"
	EnvS3SecretKey         = "OFFSYNC_S3_SECRET_KEY"

	// EnvFile names the dotenv file to read; ".env" when unset.
	EnvFile = "OFFSYNC_ENV_FILE"
)

// parseEnv reads the dotenv file, if present, without overriding variables
// already set in the process, then overlays cfg.
func parseEnv(cfg *Config) error {
	file := os.Getenv(EnvFile)
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", file, err)
	}

	setString(&cfg.ServerEndpointAddr, os.Getenv(EnvServer))
	setString(&cfg.DatabasePath, os.Getenv(EnvDatabase))
	setString(&cfg.Owner, os.Getenv(EnvOwner))
	setString(&cfg.DeviceID, os.Getenv(EnvDeviceID))
	setString(&cfg.AccessToken, os.Getenv(EnvToken))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))
	setString(&cfg.S3.Bucket, os.Getenv(EnvS3Bucket))
	setString(&cfg.S3.Region, os.Getenv(EnvS3Region))
	setString(&cfg.S3.Endpoint, os.Getenv(EnvS3Endpoint))
	setString(&cfg.S3.AccessKey, os.Getenv(EnvS3AccessKey))
	setString(&cfg.S3.SecretKey, os.Getenv(EnvS3SecretKey))

	for name, dst := range map[string]*time.Duration{
		EnvOnlineCheckInterval: &cfg.OnlineCheckInterval,
		EnvSyncInterval:        &cfg.SyncInterval,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	return nil
}
