package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvGRPCAddr, ":6000")
	t.Setenv(EnvTokenValidity, "2h")

	cfg := &Config{EndpointAddrHTTP: ":8080"}
	parseEnv(cfg)

	assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "server.env")
	require.NoError(t, os.WriteFile(file, []byte("OFFSYNC_JWT_SECRET=dotenv-secret\nOFFSYNC_LOG_LEVEL=warn\n"), 0o600))

	t.Setenv(EnvFile, file)
	// registered so that t cleans up what godotenv sets
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvLogLevel, "warn-from-shell")
	require.NoError(t, os.Unsetenv(EnvJWTSecret))

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv-secret", cfg.SecretKey)
	// already-set variables win over the file
	assert.Equal(t, "warn-from-shell", cfg.LogLevel)
}

func Test_parseEnv_BadDuration(t *testing.T) {
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv(EnvTokenValidity, "soon")
	require.Panics(t, func() { parseEnv(&Config{}) })
}
