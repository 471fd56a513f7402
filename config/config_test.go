package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_NAME", "MINIO_BUCKET", "PRESIGN_EXPIRY", "PLAYLIST_LIST_LIMIT", "MINIO_USE_SSL"} {
		t.Setenv(key, "")
	}
	// t.Setenv leaves the key present; typed helpers must fall back on unparsable values.
	cfg := fromEnv()

	assert.Equal(t, "", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.PresignExpiry)
	assert.Equal(t, 0, cfg.PlaylistListLimit)
	assert.False(t, cfg.MinioUseSSL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("PRESIGN_EXPIRY", "15m")
	t.Setenv("PLACEHOLDER_COVER", "covers/empty.png")
	t.Setenv("PLAYLIST_LIST_LIMIT", "20")

	cfg := fromEnv()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 15*time.Minute, cfg.PresignExpiry)
	assert.Equal(t, "covers/empty.png", cfg.PlaceholderCover)
	assert.Equal(t, 20, cfg.PlaylistListLimit)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	assert.Equal(t, 7, getEnvInt("REDIS_DB", 7))
}
