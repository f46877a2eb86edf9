// ABOUTME: Tests for config loading, env var expansion, and duration parsing
// ABOUTME: Covers validation failures for missing or malformed fields

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

auth:
  jwt_secret: "super-secret-value"

providers:
  send_timeout: "5s"

logging:
  level: "info"
  format: "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "super-secret-value", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.Providers.SendTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("RPMANAGER_TEST_SECRET", "injected-secret")

	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

auth:
  jwt_secret: "${RPMANAGER_TEST_SECRET}"

providers:
  send_timeout: "5s"

logging:
  level: "info"
  format: "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "injected-secret", cfg.Auth.JWTSecret)
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

auth:
  jwt_secret: "${RPMANAGER_DEFINITELY_UNSET_VAR}"

providers:
  send_timeout: "5s"

logging:
  level: "info"
  format: "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Auth.JWTSecret)
}

func TestLoad_DurationParsing(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

providers:
  send_timeout: "1m30s"

logging:
  level: "info"
  format: "text"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1*time.Minute+30*time.Second, cfg.Providers.SendTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr "missing colon"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

providers:
  send_timeout: "invalid-duration"

logging:
  level: "info"
  format: "text"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "info"
  format: "text"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "http_addr")
}

func TestValidate_NegativeSendTimeoutRejected(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{HTTPAddr: "0.0.0.0:8080"},
		Providers: ProvidersConfig{
			SendTimeoutRaw: "5s",
			SendTimeout:    -1,
		},
	}
	assert.ErrorContains(t, cfg.Validate(), "send_timeout")
}
