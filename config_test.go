package spacetraveling

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CMS_ENDPOINT", "https://repo.cdn.prismic.io/api/v2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.cdn.prismic.io/api/v2", cfg.CMSEndpoint)
	assert.Equal(t, "spacetraveling", cfg.Name)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 1, cfg.PageSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, "data/documents.db", cfg.StorageDSN)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spacetraveling.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  name: Meu Blog
cms:
  endpoint: https://file.cdn.prismic.io/api/v2
  page_size: 5
cache:
  ttl: 10m
display:
  timezone: America/Sao_Paulo
`), 0o644))
	t.Setenv("CMS_ENDPOINT", "https://env.cdn.prismic.io/api/v2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Meu Blog", cfg.Name)
	assert.Equal(t, "https://env.cdn.prismic.io/api/v2", cfg.CMSEndpoint, "environment overrides the file")
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SiteConfig
		wantErr bool
	}{
		{name: "ok", cfg: SiteConfig{CMSEndpoint: "https://x", Timezone: "UTC"}},
		{name: "missing endpoint", cfg: SiteConfig{Timezone: "UTC"}, wantErr: true},
		{name: "admin without secret", cfg: SiteConfig{CMSEndpoint: "https://x", Timezone: "UTC", AdminPassword: "p"}, wantErr: true},
		{name: "bad timezone", cfg: SiteConfig{CMSEndpoint: "https://x", Timezone: "Mars/Olympus"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
