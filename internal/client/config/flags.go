package config

import "github.com/spf13/pflag"

// BindFlags registers command-line overrides for cfg on fs. Current values
// become the flag defaults, so flags win over every earlier source.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to a JSON config file")
	fs.StringVarP(&cfg.ServerEndpointAddr, "server", "a", cfg.ServerEndpointAddr, "address and port of the remote store")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.Owner, "owner", cfg.Owner, "signed-in owner id")
	fs.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "override the persisted device id")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "access token for the remote store")
	fs.DurationVarP(&cfg.OnlineCheckInterval, "online-check-interval", "i", cfg.OnlineCheckInterval, "how often reachability is probed")
	fs.DurationVar(&cfg.SyncInterval, "sync-interval", cfg.SyncInterval, "interval between background sync passes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "bucket for voice note uploads, empty disables uploads")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3-compatible endpoint URL")
}
