package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialOverrideKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inline_cache:\n  max_cache_miss_count: 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.InlineCache.MaxCacheMissCount)
	assert.Equal(t, Default().InlineCache.MinCacheFillCount, cfg.InlineCache.MinCacheFillCount)
	assert.Equal(t, DispatchSwitch, cfg.Dispatch)
}

func TestLoad_MalformedFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inline_cache: [this is not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestICConfig_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.InlineCache.MaxCacheCount = 99

	ic := cfg.ICConfig()
	assert.Equal(t, 99, ic.MaxCacheCount)
	assert.Equal(t, cfg.InlineCache.MinCacheFillCount, ic.MinCacheFillCount)
}
