package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "storefront.yml")
	content := `
system:
  workdir: ` + dir + `
web:
  port: 8088
database:
  type: postgres
  name: shop
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0o600))

	t.Setenv("STOREFRONT_DB_NAME", "shop_env")
	t.Setenv("STOREFRONT_SYSTEM_DEBUG", "false")
	t.Setenv("STOREFRONT_AUTH_TOKEN_TTL_HOURS", "2")

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "shop_env", cfg.Database.Name)
	assert.False(t, cfg.System.Debug)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	// untouched keys keep their defaults
	assert.Equal(t, "/api", cfg.Web.ApiPrefix)
	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func TestLoadConfig_MongoURIFallback(t *testing.T) {
	t.Setenv("STOREFRONT_SYSTEM_WORKDIR", t.TempDir())
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/storefront")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "mongodb", cfg.Database.Type)
	assert.Equal(t, "mongodb://localhost:27017/storefront", cfg.Database.URI)
}

func TestTokenTTLDefault(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Auth.TokenTTLHours = 0
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL())
}
