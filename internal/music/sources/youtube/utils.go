package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	youtubeHost = regexp.MustCompile(`^(?:www\.|m\.|music\.)?(?:youtube\.com|youtu\.be)$`)
	videoIDRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// IsYouTubeURL reports whether raw points at youtube.com or youtu.be.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return youtubeHost.MatchString(strings.ToLower(u.Hostname()))
}

// VideoID extracts the video id from watch, short, shorts and embed links.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !youtubeHost.MatchString(strings.ToLower(u.Hostname())) {
		return ""
	}

	var id string
	switch {
	case u.Hostname() == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case u.Path == "/watch":
		id = u.Query().Get("v")
	case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/embed/"), strings.HasPrefix(u.Path, "/live/"):
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) >= 2 {
			id = parts[1]
		}
	}
	if !videoIDRe.MatchString(id) {
		return ""
	}
	return id
}

// PlaylistID returns the list parameter of a YouTube url.
func PlaylistID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !youtubeHost.MatchString(strings.ToLower(u.Hostname())) {
		return ""
	}
	return u.Query().Get("list")
}

// CleanVideoURL rebuilds a watch url with only the video id, dropping list,
// index and timestamp parameters. Input without a video id is returned as is.
func CleanVideoURL(raw string) string {
	id := VideoID(raw)
	if id == "" {
		return raw
	}
	return WatchURL(id)
}

// WatchURL returns the canonical watch url for a video id.
func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// parseClock parses "m:ss" or "h:mm:ss". Anything else is zero.
func parseClock(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
