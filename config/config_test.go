// mediaq/config/config_test.go
package config_test // Use an external test package

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mediaq/config"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads default values correctly", func(t *testing.T) {
		// Ensure no env vars are lingering from other tests
		t.Setenv("MEDIAQ_REDIS_ADDR", "")
		t.Setenv("MEDIAQ_QUEUE_KEY", "")
		t.Setenv("MEDIAQ_POLL_TIMEOUT", "")
		t.Setenv("MEDIAQ_MAX_INPUT_SIZE", "")
		t.Setenv("MEDIAQ_AUTH_ENABLE", "")
		t.Setenv("MEDIAQ_PORT", "")

		cfg, err := config.Load()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, "media:jobs:queue", cfg.QueueKey)
		assert.Equal(t, 5*time.Second, cfg.PollTimeout)
		assert.Equal(t, 3*time.Second, cfg.PollBackoff)
		assert.Equal(t, 2*time.Minute, cfg.ProcessingTTL)
		assert.Equal(t, "ffmpeg", cfg.FFBin)
		assert.Equal(t, "ffprobe", cfg.FFProbeBin)
		assert.Equal(t, int64(2*1024*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, "libx264", cfg.VideoCodec)
		assert.Equal(t, 1280, cfg.VideoWidth)
		assert.Equal(t, 720, cfg.VideoHeight)
		assert.Equal(t, "aac", cfg.AudioCodec)
		assert.Equal(t, "128k", cfg.AudioBitrate)
		assert.Equal(t, 320, cfg.ThumbWidth)
		assert.Equal(t, false, cfg.AuthEnable)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "local", cfg.StorageBackend)
	})

	t.Run("overrides defaults with environment variables", func(t *testing.T) {
		t.Setenv("MEDIAQ_REDIS_ADDR", "redis.internal:6380")
		t.Setenv("MEDIAQ_QUEUE_KEY", "staging:jobs")
		t.Setenv("MEDIAQ_POLL_TIMEOUT", "750ms")
		t.Setenv("MEDIAQ_PROCESSING_TTL", "90s")
		t.Setenv("MEDIAQ_MAX_INPUT_SIZE", "50MB")
		t.Setenv("MEDIAQ_THROTTLE_FREEMEM", "200MB")
		t.Setenv("MEDIAQ_AUTH_ENABLE", "true")
		t.Setenv("MEDIAQ_AUTH_KEY", "newsecret")

		cfg, err := config.Load()
		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
		assert.Equal(t, "staging:jobs", cfg.QueueKey)
		assert.Equal(t, 750*time.Millisecond, cfg.PollTimeout)
		assert.Equal(t, 90*time.Second, cfg.ProcessingTTL)
		assert.Equal(t, int64(50*1024*1024), cfg.MaxInputSize)
		assert.Equal(t, int64(200*1024*1024), cfg.ThrottleFreeMem)
		assert.Equal(t, true, cfg.AuthEnable)
		assert.Equal(t, "newsecret", cfg.AuthKey)
	})
}
