package tests

import (
	"testing"

	"github.com/ea-cloud/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("CACHE_ENABLED", "")

	cfg, err := config.LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "ea-cloud", cfg.Mongo.Database)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	// Telegram is unconfigured by default, which disables notifications
	assert.Empty(t, cfg.Telegram.BotToken)
}

func TestLoadProductionConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGO_DB_NAME", "ea-cloud-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_PERMISSION_CHAT_ID", "-100123456")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_REDIS_URL", "redis://localhost:6380")

	cfg, err := config.LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ea-cloud-test", cfg.Mongo.Database)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "-100123456", cfg.Telegram.PermissionChatID)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "redis://localhost:6380", cfg.Cache.RedisURL)
}

func TestConfigValidation(t *testing.T) {
	t.Run("TokenWithoutChatID", func(t *testing.T) {
		t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_PERMISSION_CHAT_ID", "")

		_, err := config.LoadProductionConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_PERMISSION_CHAT_ID")
	})

	t.Run("InvalidPortFallsBackToDefault", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")

		cfg, err := config.LoadProductionConfig()
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Server.Port)
	})
}
