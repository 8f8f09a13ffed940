package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "[server]\nport = \":8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "X-Semla-User", config.Server.DebugUserHeader)
	assert.Equal(t, "Authorization", config.Auth.SessionHeader)
	assert.Equal(t, 24*7, config.Auth.SessionTTLHours)
	assert.Equal(t, int64(10<<20), config.Uploads.MaxFileBytes)
	assert.NotEmpty(t, config.Uploads.AllowedExtensions)
	assert.NotEmpty(t, config.EmojiVariants, "emoji pool must never be empty, the exporter picks from it")
}

func TestLoadConfigRequiresPort(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[server]\nenable_auth = false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoadConfigOverrides(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `
emoji_variants = ["🎓"]

[server]
port = ":9999"

[uploads]
max_file_bytes = 1024
allowed_extensions = ["pdf"]
`))
	require.NoError(t, err)

	assert.Equal(t, int64(1024), config.Uploads.MaxFileBytes)
	assert.Equal(t, []string{"pdf"}, config.Uploads.AllowedExtensions)
	assert.Equal(t, []string{"🎓"}, config.EmojiVariants)
}
