package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "sunderland_site"
redis_host = "localhost"
redis_port = "6379"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
login_rate_limit_allowed_per_min = 10
secure_cookies = false

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/sunderland/service.log"
postgres_host = "db"
postgres_port = "5432"
postgres_db_name = "sunderland_site"
redis_host = "redis"
redis_port = "6379"
prometheus_metrics_host = ""
prometheus_metrics_port = "2112"
secure_cookies = true
sentry_enabled = true
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sunderland_site", cfg.PostgresDBName)
	assert.Equal(t, 10, cfg.LoginRateLimitAllowedPerMin)
	assert.False(t, cfg.SecureCookies)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.True(t, cfg.SecureCookies)
	assert.True(t, cfg.SentryEnabled)
	// rate limit not set in the file, falls back to the default
	assert.Equal(t, 15, cfg.LoginRateLimitAllowedPerMin)
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("development", "no-such-config.toml")
	assert.Error(t, err)
}
