package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", " token ")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectPollInterval)
	assert.Equal(t, 5, cfg.SearchResults)
	assert.Equal(t, 15, cfg.QueuePreview)
	assert.True(t, cfg.EventLogEnabled)
	assert.True(t, cfg.InitSlashCommands)
}

func TestParseRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsBadValues(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("IDLE_TIMEOUT", "0s")
	t.Setenv("SEARCH_RESULTS", "40")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDLE_TIMEOUT")
	assert.Contains(t, err.Error(), "SEARCH_RESULTS")
}

func TestGuildBlacklist(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "1, 2")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.IsGuildBlacklisted("2"))
	assert.False(t, cfg.IsGuildBlacklisted("3"))
}
