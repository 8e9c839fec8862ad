// Package sources turns user input into TrackInfo values that the stream
// package can play. Each subpackage talks to one kind of backend.
package sources

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	SourceYouTube = "youtube"
	SourceYtdlp   = "ytdlp"
	SourceRadio   = "radio"
)

var (
	ErrNoResults   = errors.New("no results found")
	ErrUnsupported = errors.New("unsupported url")
	ErrNoStream    = errors.New("no playable stream found")
)

// TrackInfo describes one resolved media item.
type TrackInfo struct {
	URL        string // page url shown to users
	StreamURL  string // direct media link fed to ffmpeg
	Title      string
	Uploader   string
	Duration   time.Duration
	IsLive     bool
	Thumbnail  string
	SourceName string
}

// Playable reports whether the track can be handed to the stream layer.
func (t *TrackInfo) Playable() bool {
	return t != nil && t.StreamURL != ""
}

// DisplayTitle falls back to the url when no title is known.
func (t *TrackInfo) DisplayTitle() string {
	if t == nil {
		return ""
	}
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// IsURL reports whether s looks like an absolute http(s) url.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}
