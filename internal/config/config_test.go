package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdesk/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 150*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Draft.Backend)
	assert.Equal(t, "shipment-draft", cfg.Draft.Namespace)
	assert.Equal(t, int64(20), cfg.Extraction.MaxFileSizeMB)
	assert.Equal(t, 10, cfg.Extraction.MaxFiles)
	assert.Equal(t, 900, cfg.Extraction.CacheTTLSecs)
	assert.Nil(t, cfg.Extraction.SecondaryConfig())
	assert.Empty(t, cfg.S3.Bucket)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHIPDESK_DRAFT_BACKEND", "memory")
	t.Setenv("SHIPDESK_EXTRACTION_MAX_FILES", "3")
	t.Setenv("SHIPDESK_EXTRACTION_SECONDARY_URL", "http://backup:9000/extract")
	t.Setenv("SHIPDESK_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://ops.example.com ,")
	t.Setenv("SHIPDESK_S3_BUCKET", "trade-docs")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Draft.Backend)
	assert.Equal(t, 3, cfg.Extraction.MaxFiles)
	secondary := cfg.Extraction.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "http://backup:9000/extract", secondary.URL)
	assert.Equal(t, []string{"https://app.example.com", "https://ops.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "trade-docs", cfg.S3.Bucket)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHIPDESK_SERVER_PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("SHIPDESK_DRAFT_BACKEND", "redis")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "drafts", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/drafts?sslmode=disable", db.DSN())
}
