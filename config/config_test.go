package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageBackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "data/wordle_stats.json", cfg.Storage.DataPath)
	assert.Equal(t, "!", cfg.Discord.CommandPrefix)
	assert.Equal(t, 10, cfg.Leaderboard.Size)
	assert.Equal(t, "21:00", cfg.Scheduler.PostTime)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_PostgresBackendRequiresURL(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_ConnectionTuning(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("REDIS_URL", "redis://cache.internal:6380/2")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("DB_MAX_IDLE_CONNS", "4")
	t.Setenv("DB_QUERY_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://cache.internal:6380/2", cfg.Redis.URL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 4, cfg.Database.MaxIdleConns)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
}

func TestLoad_InvalidPostTime(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("LEADERBOARD_POST_TIME", "25:00")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEADERBOARD_POST_TIME")
}

func TestSchedulerConfig_PostTimeOfDay(t *testing.T) {
	cfg := SchedulerConfig{PostTime: "07:45"}

	hour, minute, err := cfg.PostTimeOfDay()
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 45, minute)
}

func TestDiscordConfig_IsAdmin(t *testing.T) {
	cfg := DiscordConfig{AdminIDs: []string{"100", "200"}}

	assert.True(t, cfg.IsAdmin("100"))
	assert.False(t, cfg.IsAdmin("300"))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_PARSE_SUMMARY", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureParseSummary, nil))
	assert.True(t, ff.IsEnabled(FeatureParseShare, nil))
}

func TestFeatureFlags_UserOverrideWins(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureCommandBackfill))

	ctx := &FeatureContext{UserID: "42"}
	assert.False(t, ff.IsEnabled(FeatureCommandBackfill, ctx))

	ff.SetUserOverride("42", FeatureCommandBackfill, true)
	assert.True(t, ff.IsEnabled(FeatureCommandBackfill, ctx))

	ff.ClearUserOverrides("42")
	assert.False(t, ff.IsEnabled(FeatureCommandBackfill, ctx))
}

func TestFeatureFlags_AdminBypass(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureLeaderboardDailyPost))

	ctx := &FeatureContext{UserID: "1", IsAdmin: true}
	assert.True(t, ff.IsEnabled(FeatureLeaderboardDailyPost, ctx))
}
