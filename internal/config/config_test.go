package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_ID", "123")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoadRequiresAdminID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_ID")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "123")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "123")
	t.Setenv("DATABASE_URL", "postgres://localhost/ethereal")
	t.Setenv("CHANNEL_ID", "")
	t.Setenv("GROUP_LINK", "")
	t.Setenv("VERIFICATION_GROUP", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, int64(123), cfg.AdminID)
	assert.Equal(t, int64(0), cfg.ChannelID)
	assert.Equal(t, "@etherealplus", cfg.GroupLink)
	assert.Equal(t, "@taskchecked", cfg.VerificationGroup)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "123")
	t.Setenv("CHANNEL_ID", "-100987")
	t.Setenv("GROUP_LINK", "@othergroup")
	t.Setenv("DATABASE_URL", "postgres://localhost/ethereal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(-100987), cfg.ChannelID)
	assert.Equal(t, "@othergroup", cfg.GroupLink)
	assert.Equal(t, "postgres://localhost/ethereal", cfg.DatabaseURL)
}

func TestLoadRejectsBadChannelID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "123")
	t.Setenv("DATABASE_URL", "postgres://localhost/ethereal")
	t.Setenv("CHANNEL_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHANNEL_ID")
}
