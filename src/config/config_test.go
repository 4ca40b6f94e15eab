package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()
	require.NotNil(t, Cfg)
	assert.Equal(t, "8080", Cfg.Port)
	assert.Equal(t, "info", Cfg.LogLevel)
	assert.Equal(t, int64(10*1024*1024), Cfg.MaxUploadSizeBytes)
	assert.Equal(t, "", Cfg.SectionPatternsFile)
	assert.Equal(t, 15*time.Minute, Cfg.ResultCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "1024")
	t.Setenv("RESULT_CACHE_TTL", "1h")

	LoadConfig()
	assert.Equal(t, "9000", Cfg.Port)
	assert.Equal(t, "debug", Cfg.LogLevel)
	assert.Equal(t, int64(1024), Cfg.MaxUploadSizeBytes)
	assert.Equal(t, time.Hour, Cfg.ResultCacheTTL)
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "lots")
	t.Setenv("RESULT_CACHE_TTL", "soon")

	LoadConfig()
	assert.Equal(t, int64(10*1024*1024), Cfg.MaxUploadSizeBytes)
	assert.Equal(t, 15*time.Minute, Cfg.ResultCacheTTL)
}
