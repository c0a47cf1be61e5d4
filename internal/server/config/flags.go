package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dmitrijs2005/offsync/internal/flagx"
)

var serverFlags = []string{"-a", "-l", "-d", "-s", "-t", "-log-level"}

// parseFlags overlays cfg with the server flags found in args:
//
//	-a          gRPC bind address
//	-l          HTTP bind address for /healthz
//	-d          PostgreSQL DSN, empty keeps rows in memory
//	-s          JWT HMAC secret
//	-t          access token validity: minutes ("15") or a duration ("90s")
//	-log-level  debug, info, warn or error
//
// Other arguments, such as -mint-token, are left for main.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "gRPC bind address")
	fs.StringVar(&cfg.EndpointAddrHTTP, "l", cfg.EndpointAddrHTTP, "HTTP bind address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "JWT secret key")
	fs.Var((*minutes)(&cfg.AccessTokenValidityDuration), "t", "access token validity")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("server flags: %w", err)
	}
	return nil
}

// minutes reads a bare integer as minutes and anything else as a Go duration.
type minutes time.Duration

func (m *minutes) String() string { return time.Duration(*m).String() }

func (m *minutes) Set(s string) error {
	if n, err := strconv.Atoi(s); err == nil {
		*m = minutes(time.Duration(n) * time.Minute)
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid validity %q", s)
	}
	*m = minutes(d)
	return nil
}
