package player

import (
	"context"
	"sync"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/pkg/deferred"
)

// Track is a queued request whose media info may still be resolving. A nil
// info marks a failed resolution.
type Track struct {
	Info      *deferred.Value[*sources.TrackInfo]
	Requester Requester

	mu      sync.Mutex
	notice  Message
	started bool
	dropped bool
}

func newTrack(r Requester) *Track {
	return &Track{Info: deferred.New[*sources.TrackInfo](), Requester: r}
}

func resolvedTrack(r Requester, info *sources.TrackInfo) *Track {
	return &Track{Info: deferred.Resolved(info), Requester: r}
}

// attachNotice stores the "added to queue" message. It reports false when
// the track already started or was dropped, in which case the caller deletes
// the message.
func (t *Track) attachNotice(m Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.dropped {
		return false
	}
	t.notice = m
	return true
}

// start marks the track as playing and hands back its pending notice.
func (t *Track) start() Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
	m := t.notice
	t.notice = nil
	return m
}

// drop marks a track removed from the queue and hands back its pending
// notice.
func (t *Track) drop() Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropped = true
	m := t.notice
	t.notice = nil
	return m
}

func (t *Track) isDropped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Title is the resolved title, or "" while loading or after a failure.
func (t *Track) Title() string {
	info, ok := t.Info.Peek()
	if !ok || info == nil {
		return ""
	}
	return info.DisplayTitle()
}

func (t *Track) wait(ctx context.Context) (*sources.TrackInfo, error) {
	return t.Info.Wait(ctx)
}
