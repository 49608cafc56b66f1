package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "apidash", cfg.Name)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, TransportChi, cfg.Server.Transport)
	assert.Zero(t, cfg.HTTP.Timeout, "requests are unbounded by default")
	assert.Equal(t, dashboard.DefaultEndpoints(), cfg.Endpoints)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Storage.CredentialsPath)
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "apidash.yml", `
name: demo
server:
  addr: ":9000"
  transport: fiber
http:
  timeout: 5s
dashboard:
  widgets: [dog, joke]
endpoints:
  dog: http://localhost:1/dog
logging:
  level: debug
  format: json
`)
	t.Setenv("APIDASH_SERVER_ADDR", ":9100")

	cfg, err := Load(WithConfigFile(path), WithEnvFile(writeFile(t, dir, "empty.env", "")))
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, ":9100", cfg.Server.Addr, "environment wins over the file")
	assert.Equal(t, TransportFiber, cfg.Server.Transport)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"dog", "joke"}, cfg.Dashboard.Widgets)
	assert.Equal(t, "http://localhost:1/dog", cfg.Endpoints.Dog)
	assert.Equal(t, dashboard.DefaultEndpoints().Cat, cfg.Endpoints.Cat)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "APIDASH_STORAGE_CREDENTIALS_PATH=/tmp/apidash.db\n")
	t.Cleanup(func() { _ = os.Unsetenv("APIDASH_STORAGE_CREDENTIALS_PATH") })
	t.Chdir(dir)

	cfg, err := Load(WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/apidash.db", cfg.Storage.CredentialsPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "server:\n  transport: grpc\n")

	_, err := Load(WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transport must be one of: chi fiber")
}

func TestLoadMissingExplicitFiles(t *testing.T) {
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	assert.Error(t, err)

	_, err = Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
