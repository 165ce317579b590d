package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
allowed-domains = ["i.imgur.com", "Example.com"]

[imgur]
client-id = "abc123"
`)

	cfg := &Config{ConfigFile: path}
	require.NoError(t, cfg.loadFile())

	assert.Equal(t, []string{"i.imgur.com", "Example.com"}, cfg.AllowedDomains)
	assert.Equal(t, "abc123", cfg.ImgurClientID)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := &Config{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")}

	// Отсутствующий файл конфигурации — фатальная ошибка запуска
	assert.Error(t, cfg.loadFile())
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfigFile(t, `allowed-domains = [unclosed`)

	cfg := &Config{ConfigFile: path}
	assert.Error(t, cfg.loadFile())
}

func TestLoadFile_EmptyDomains(t *testing.T) {
	path := writeConfigFile(t, `
allowed-domains = []

[imgur]
client-id = "abc123"
`)

	cfg := &Config{ConfigFile: path}
	assert.Error(t, cfg.loadFile())
}

func TestIsHTTPSEnabled(t *testing.T) {
	cfg := &Config{EnableHTTPS: true}
	assert.False(t, cfg.IsHTTPSEnabled(), "без сертификата HTTPS не включается")

	cfg.TLSCertFile = "cert.pem"
	cfg.TLSKeyFile = "key.pem"
	assert.True(t, cfg.IsHTTPSEnabled())

	cfg.EnableHTTPS = false
	assert.False(t, cfg.IsHTTPSEnabled())
}
