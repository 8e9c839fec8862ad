package eventlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/jukebox/internal/music/sources"
)

func readLog(t *testing.T, dir, key string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, key, fileName))
	require.NoError(t, err)
	return string(data)
}

func TestEntriesGoToGuildFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, true)

	info := &sources.TrackInfo{Title: "Song", Duration: 65 * time.Second}
	l.Added("g1", info)
	l.Playing("g1", info, "Lounge")
	l.Skip("g1", "Lounge")
	l.Error("g1", errors.New("boom"))
	l.Finished("g1", "Lounge")
	l.Startup("jukebox#0001")
	require.NoError(t, l.Close())

	out := readLog(t, dir, "g1")
	assert.Contains(t, out, `"entry":"PLAY"`)
	assert.Contains(t, out, "Added Song to queue with duration of 1:05")
	assert.Contains(t, out, "Playing Song in VC: Lounge")
	assert.Contains(t, out, "Skipped track in VC: Lounge")
	assert.Contains(t, out, `"entry":"ERROR"`)
	assert.Contains(t, out, "Finished playing in VC: Lounge")
	assert.NotContains(t, out, "STARTUP")

	assert.Contains(t, readLog(t, dir, generalDir), "Bot is logged as jukebox#0001")
}

func TestVoiceMove(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, true)
	l.VoiceMove("g", "ann", "", "A")
	l.VoiceMove("g", "ann", "A", "B")
	l.VoiceMove("g", "ann", "B", "")
	l.VoiceMove("g", "ann", "B", "B")
	require.NoError(t, l.Close())

	out := readLog(t, dir, "g")
	assert.Contains(t, out, "User ann joined VC A")
	assert.Contains(t, out, "User ann switched VC from A to B")
	assert.Contains(t, out, "User ann left VC B")
}

func TestDisabledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, false)
	l.Error("g1", errors.New("boom"))
	require.NoError(t, l.Close())

	_, err := os.Stat(filepath.Join(dir, "g1"))
	assert.True(t, os.IsNotExist(err))

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Skip("g", "c") })
}
