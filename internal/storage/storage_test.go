package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTracksHistoryKeepsNewestFirst(t *testing.T) {
	s := newTestStorage(t)

	for i := range tracksHistoryLimit + 3 {
		require.NoError(t, s.AppendTrack("g1", TrackRecord{
			Title:    fmt.Sprintf("track %d", i),
			Duration: time.Duration(i) * time.Second,
		}))
	}

	got, err := s.FetchTracksHistory("g1")
	require.NoError(t, err)
	require.Len(t, got, tracksHistoryLimit)
	assert.Equal(t, fmt.Sprintf("track %d", tracksHistoryLimit+2), got[0].Title)
	assert.Equal(t, "track 3", got[len(got)-1].Title)
}

func TestCommandHistoryIsPerGuild(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "music-play", Param: "song"}))
	require.NoError(t, s.AppendCommandToHistory("g2", CommandHistoryRecord{Command: "music-stop"}))

	g1, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, g1, 1)
	assert.Equal(t, "song", g1[0].Param)

	empty, err := s.FetchTracksHistory("g3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCommandHistoryLimit(t *testing.T) {
	s := newTestStorage(t)
	for i := range commandHistoryLimit * 2 {
		require.NoError(t, s.AppendCommandToHistory("g", CommandHistoryRecord{Param: fmt.Sprint(i)}))
	}
	got, err := s.FetchCommandHistory("g")
	require.NoError(t, err)
	assert.Len(t, got, commandHistoryLimit)
	assert.Equal(t, fmt.Sprint(commandHistoryLimit*2-1), got[len(got)-1].Param)
}

func TestHistoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")

	s, err := New(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.AppendTrack("g", TrackRecord{Title: "kept", Duration: 90 * time.Second}))
	require.NoError(t, s.AppendCommandToHistory("g", CommandHistoryRecord{Command: "music-play"}))
	require.NoError(t, s.Close())

	reopened, err := New(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	tracks, err := reopened.FetchTracksHistory("g")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "kept", tracks[0].Title)
	assert.Equal(t, 90*time.Second, tracks[0].Duration)

	cmds, err := reopened.FetchCommandHistory("g")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "music-play", cmds[0].Command)
}

func TestCloseFinishesWhenParentContextIsLive(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Close() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	assert.Error(t, s.AppendTrack("g", TrackRecord{Title: "late"}), "writes after Close are rejected")
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	s := newTestStorage(t)

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AppendTrack("g", TrackRecord{Title: fmt.Sprint(i)}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AppendCommandToHistory("g", CommandHistoryRecord{Param: fmt.Sprint(i)}))
		}()
	}
	wg.Wait()

	tracks, err := s.FetchTracksHistory("g")
	require.NoError(t, err)
	assert.Len(t, tracks, 5)
	cmds, err := s.FetchCommandHistory("g")
	require.NoError(t, err)
	assert.Len(t, cmds, 5)
}
