package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tt-P607/biometric-sleep-bot/internal/sleep"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "data/datastore.json", cfg.StoragePath)
	assert.Equal(t, "pollinations", cfg.AIProvider)
	assert.True(t, cfg.Sleep.Enabled)

	p, err := cfg.SleepParams()
	require.NoError(t, err)
	assert.Equal(t, sleep.ClockTime{Hour: 23, Minute: 30}, p.StartTime)
	assert.Equal(t, sleep.ClockTime{Hour: 7, Minute: 30}, p.EndTime)
	assert.Equal(t, 30*time.Minute, p.RandomOffset)
	assert.Equal(t, 30*time.Minute, p.DrowsyDuration)
	assert.Equal(t, 50.0, p.WakeThreshold)
	assert.Equal(t, 20.0, p.WakeIncrement)
	assert.Equal(t, 80.0, p.WakeMax)
	assert.Equal(t, 5.0, p.DecayPerMinute)
}

func TestNewMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := New()
	assert.Error(t, err)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("SLEEP_START_TIME", "25:00")

	_, err := New()
	assert.ErrorContains(t, err, "SLEEP_START_TIME")
}

func TestNewRejectsNegativeDecay(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("SLEEP_DECAY_PER_MINUTE", "-1")

	_, err := New()
	assert.Error(t, err)
}

func TestAccessLists(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("SLEEP_WHITELIST", "group_1,private_2")
	t.Setenv("SLEEP_BLACKLIST", "group_3")

	cfg, err := New()
	require.NoError(t, err)
	p, err := cfg.SleepParams()
	require.NoError(t, err)
	assert.Equal(t, []string{"group_1", "private_2"}, p.Whitelist)
	assert.Equal(t, []string{"group_3"}, p.Blacklist)
}

func TestMoodPrompt(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	require.NoError(t, err)

	assert.Empty(t, cfg.MoodPrompt(sleep.StateAwake))
	assert.NotEmpty(t, cfg.MoodPrompt(sleep.StateDrowsy))
	assert.NotEmpty(t, cfg.MoodPrompt(sleep.StateSleeping))
	assert.NotEmpty(t, cfg.MoodPrompt(sleep.StateWoken))

	cfg.Sleep.InjectPrompts = false
	assert.Empty(t, cfg.MoodPrompt(sleep.StateSleeping))
}
