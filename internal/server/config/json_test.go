package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":    "www.example:8080",
		"endpoint_addr_grpc":    "www.example:9000",
		"database_dsn":          "postgres://db",
		"email_encryption_key":  "a2V5",
		"session_signing_key":   "my_secret_key",
		"environment":           "production",
		"allowed_email_domains": []string{"Example.org"},
		"login_path":            "/login",
		"app_path":              "/app",
		"web_root":              "/srv/web",
		"shutdown_timeout":      "3s",
	})

	t.Run("loads every field", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "a2V5", cfg.EmailEncryptionKey)
		assert.Equal(t, "my_secret_key", cfg.SessionSigningKey)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, []string{"example.org"}, cfg.AllowedEmailDomains)
		assert.Equal(t, "/login", cfg.LoginPath)
		assert.Equal(t, "/app", cfg.AppPath)
		assert.Equal(t, "/srv/web", cfg.WebRoot)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("absent fields keep current values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"session_signing_key": "only-this"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-this", cfg.SessionSigningKey)
		assert.Equal(t, ":3000", cfg.EndpointAddrHTTP)
		assert.Equal(t, []string{"gmail.com"}, cfg.AllowedEmailDomains)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
