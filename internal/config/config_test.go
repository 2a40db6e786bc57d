package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/autobard/internal/logger"
	"github.com/leandrodaf/autobard/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchPlaybackDefaults(t *testing.T) {
	assert.Equal(t, contracts.DefaultPlaybackConfig(), DefaultConfig().Playback())
}

func TestPlaybackClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlaybackSpeed = 5
	cfg.InputDelayMs = 900
	cfg.MinNoteDelayMs = -3
	cfg.CountdownSeconds = -1

	pb := cfg.Playback()
	assert.Equal(t, 2.0, pb.PlaybackSpeed)
	assert.Equal(t, 500, pb.InputDelayMs)
	assert.Zero(t, pb.MinNoteDelayMs)
	assert.Zero(t, pb.CountdownSeconds)

	cfg.PlaybackSpeed = 0.1
	assert.Equal(t, 0.5, cfg.Playback().PlaybackSpeed)
}

func TestSetPlaybackRoundTrips(t *testing.T) {
	pb := contracts.DefaultPlaybackConfig()
	pb.PlaybackSpeed = 1.25
	pb.LoopMode = true
	pb.ChordStrumMs = 9

	cfg := DefaultConfig()
	cfg.SetPlayback(pb)
	assert.Equal(t, pb, cfg.Playback())
}

func TestAddRecentFile(t *testing.T) {
	cfg := DefaultConfig()
	for i := 0; i < 12; i++ {
		cfg.AddRecentFile(fmt.Sprintf("song%d.mid", i))
	}
	require.Len(t, cfg.RecentFiles, MaxRecent)
	assert.Equal(t, "song11.mid", cfg.RecentFiles[0])
	assert.Equal(t, "song2.mid", cfg.RecentFiles[9])

	cfg.AddRecentFile("song5.mid")
	assert.Equal(t, "song5.mid", cfg.RecentFiles[0])
	assert.Len(t, cfg.RecentFiles, MaxRecent)
	assert.Equal(t, 1, countOf(cfg.RecentFiles, "song5.mid"))
}

func countOf(list []string, s string) int {
	n := 0
	for _, v := range list {
		if v == s {
			n++
		}
	}
	return n
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.PlaybackSpeed = 1.5
	cfg.AddRecentFile("a.mid")
	cfg.AllowedOrigins = []string{"http://overlay.local"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"playback_speed":0.75,"unknown":1}`), 0o644))

	cfg, err := Load(partial)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.PlaybackSpeed)
	assert.Equal(t, 50, cfg.InputDelayMs)
	assert.NotNil(t, cfg.RecentFiles)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{"playback_speed":`), 0o644))
	cfg, err = Load(corrupt)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestStoreDebouncedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := Open(path, logger.NewNopLogger())

	for i := 0; i < 5; i++ {
		s.Update(func(c *AppConfig) { c.CountdownSeconds = i })
	}
	assert.Equal(t, 4, s.Get().CountdownSeconds)

	require.Eventually(t, func() bool {
		cfg, err := Load(path)
		return err == nil && cfg.CountdownSeconds == 4
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "config.json"), logger.NewNopLogger())
	s.Update(func(c *AppConfig) { c.AddRecentFile("x.mid") })

	got := s.Get()
	got.RecentFiles[0] = "mutated"
	assert.Equal(t, "x.mid", s.Get().RecentFiles[0])

	require.NoError(t, s.Close())
	loaded, err := Load(s.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"x.mid"}, loaded.RecentFiles)
}
