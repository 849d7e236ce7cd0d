package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.HTTP.Address)
	require.Equal(t, 5*time.Minute, cfg.FAQ.CacheTTL)
	require.False(t, cfg.FAQ.Redis.Enabled)
	require.Equal(t, "questions", cfg.FAQ.Mongo.Collection)
	require.Equal(t, "/api/queries/images", cfg.Media.PublicBaseURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
  allowedOrigins: ["https://kb.example.com"]
faq:
  cacheTtl: 30s
  mongo:
    uri: mongodb://file-host:27017
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7000")
	t.Setenv("MONGO_URL", "mongodb://legacy:27017")
	t.Setenv("FAQ_MONGO_DATABASE", "kb")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTP.Address)
	require.Equal(t, []string{"https://kb.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.FAQ.CacheTTL)
	require.Equal(t, "mongodb://legacy:27017", cfg.FAQ.Mongo.URI)
	require.Equal(t, "kb", cfg.FAQ.Mongo.Database)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.FAQ.Redis.Enabled = true
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.FAQ.CacheTTL = -time.Second
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Media.MaxBytes = 0
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.FAQ.Mongo.URI = "mongodb://localhost"
	cfg.FAQ.Mongo.Collection = ""
	require.Error(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	require.Nil(t, splitList(" , "))
}
