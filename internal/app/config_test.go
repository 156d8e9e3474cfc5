package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "LOG_MODE", "PORT", "HTTP_SHUTDOWN_TIMEOUT",
		"GENERATION_TIMEOUT_SECONDS", "GENERATION_VALIDATE_SKETCH", "GENERATION_MAX_BODY_BYTES",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SESSION_TRACKER_TTL",
		"JWT_SECRET_KEY", "JWT_ISSUER", "APP_VERSION",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 180*time.Second, cfg.Generation.Timeout)
	assert.True(t, *cfg.Generation.ValidateSketch)
	assert.Equal(t, int64(20<<20), cfg.Generation.MaxBodyBytes)
	assert.Equal(t, 24*time.Hour, cfg.Tracker.TTL)
	assert.Empty(t, cfg.Tracker.RedisAddr)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_mode: production
server:
  port: "9000"
generation:
  timeout: 90s
  validate_sketch: false
tracker:
  redis_addr: redis:6379
  ttl: 2h
auth:
  jwt_secret_key: from-file
env:
  FS_CONFIG_SEEDED_KEY: seeded
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", ":9100")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "45")
	t.Setenv("FS_CONFIG_SEEDED_KEY", "")
	os.Unsetenv("FS_CONFIG_SEEDED_KEY")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.LogMode)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Generation.Timeout)
	assert.False(t, *cfg.Generation.ValidateSketch)
	assert.Equal(t, "redis:6379", cfg.Tracker.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.Tracker.TTL)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecretKey)
	assert.Equal(t, "seeded", os.Getenv("FS_CONFIG_SEEDED_KEY"))
}

func TestLoadConfigEnvSeedDoesNotOverride(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret_key: x\nenv:\n  FS_CONFIG_KEPT_KEY: from-file\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("FS_CONFIG_KEPT_KEY", "from-env")

	_, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", os.Getenv("FS_CONFIG_KEPT_KEY"))
}

func TestLoadConfigMissingFileIsIgnored(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	t.Setenv("JWT_SECRET_KEY", "k")
	_, err := LoadConfig()
	assert.NoError(t, err)
}

func TestLoadConfigNonPositiveOverridesFallBackToDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET_KEY", "k")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "0")
	t.Setenv("GENERATION_MAX_BODY_BYTES", "-1")
	t.Setenv("SESSION_TRACKER_TTL", "-5")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 180*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, int64(20<<20), cfg.Generation.MaxBodyBytes)
	assert.Equal(t, 24*time.Hour, cfg.Tracker.TTL)
	assert.Positive(t, cfg.Server.ShutdownTimeout)
}
