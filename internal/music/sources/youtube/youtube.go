// Package youtube resolves YouTube links and searches through the kkdai
// client, with ytsearch for free-text queries.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/ppalone/ytsearch"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/pkg/retrylimit"
)

// Hit is one search result before resolution.
type Hit struct {
	VideoID  string
	Title    string
	Channel  string
	Duration string
}

// SearchFunc runs a free-text search.
type SearchFunc func(ctx context.Context, query string) ([]Hit, error)

type Source struct {
	client *youtube.Client
	search SearchFunc
	lim    *retrylimit.Limiter
}

// New builds a Source. lim is shared with other extractors and may be nil.
func New(httpClient *http.Client, lim *retrylimit.Limiter) *Source {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Source{
		client: &youtube.Client{HTTPClient: httpClient},
		search: newSearch(httpClient),
		lim:    lim,
	}
}

func newSearch(httpClient *http.Client) SearchFunc {
	c := ytsearch.NewClient(httpClient)
	return func(ctx context.Context, query string) ([]Hit, error) {
		res, err := c.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		hits := make([]Hit, 0, len(res.Results))
		for _, r := range res.Results {
			hits = append(hits, Hit{VideoID: r.VideoID, Title: r.Title, Channel: r.Channel, Duration: r.Duration})
		}
		return hits, nil
	}
}

func (s *Source) Name() string { return sources.SourceYouTube }

// Match accepts any YouTube url.
func (s *Source) Match(raw string) bool {
	return IsYouTubeURL(raw)
}

// Search returns up to limit results. Results carry page urls only; call
// Resolve on the chosen one.
func (s *Source) Search(ctx context.Context, query string, limit int) ([]sources.TrackInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, sources.ErrNoResults
	}

	var hits []Hit
	err := retrylimit.Do(ctx, s.lim, retrylimit.Policy{Attempts: 2, Name: "youtube search"}, func(ctx context.Context) error {
		var err error
		hits, err = s.search(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}

	out := make([]sources.TrackInfo, 0, limit)
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		if h.VideoID == "" {
			continue
		}
		if _, dup := seen[h.VideoID]; dup {
			continue
		}
		seen[h.VideoID] = struct{}{}
		out = append(out, sources.TrackInfo{
			URL:        WatchURL(h.VideoID),
			Title:      h.Title,
			Uploader:   h.Channel,
			Duration:   parseClock(h.Duration),
			SourceName: sources.SourceYouTube,
		})
	}
	if len(out) == 0 {
		return nil, sources.ErrNoResults
	}
	return out, nil
}

// Resolve fetches metadata and a direct audio stream url for a video link.
func (s *Source) Resolve(ctx context.Context, raw string) (*sources.TrackInfo, error) {
	id := VideoID(raw)
	if id == "" {
		return nil, fmt.Errorf("%w: %s", sources.ErrUnsupported, raw)
	}

	var video *youtube.Video
	err := retrylimit.Do(ctx, s.lim, retrylimit.Policy{Attempts: 3, Name: "youtube video"}, func(ctx context.Context) error {
		var err error
		video, err = s.client.GetVideoContext(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("youtube video %s: %w", id, err)
	}

	info := &sources.TrackInfo{
		URL:        WatchURL(video.ID),
		Title:      video.Title,
		Uploader:   video.Author,
		Duration:   video.Duration,
		Thumbnail:  thumbnail(video.Thumbnails),
		SourceName: sources.SourceYouTube,
	}

	if video.HLSManifestURL != "" {
		info.IsLive = true
		info.StreamURL = video.HLSManifestURL
		return info, nil
	}

	format, err := bestAudio(video.Formats)
	if err != nil {
		return nil, fmt.Errorf("youtube video %s: %w", id, err)
	}

	err = retrylimit.Do(ctx, s.lim, retrylimit.Policy{Attempts: 3, Name: "youtube stream url"}, func(ctx context.Context) error {
		var err error
		info.StreamURL, err = s.client.GetStreamURLContext(ctx, video, format)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("youtube stream url %s: %w", id, err)
	}
	return info, nil
}

// Playlist lists up to limit entries of a playlist without stream urls.
// Auto-generated mixes are not supported by the client and return an error.
func (s *Source) Playlist(ctx context.Context, raw string, limit int) ([]sources.TrackInfo, error) {
	if PlaylistID(raw) == "" {
		return nil, fmt.Errorf("%w: %s", sources.ErrUnsupported, raw)
	}

	var pl *youtube.Playlist
	err := retrylimit.Do(ctx, s.lim, retrylimit.Policy{Attempts: 2, Name: "youtube playlist"}, func(ctx context.Context) error {
		var err error
		pl, err = s.client.GetPlaylistContext(ctx, raw)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("youtube playlist: %w", err)
	}

	out := make([]sources.TrackInfo, 0, len(pl.Videos))
	for _, v := range pl.Videos {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, sources.TrackInfo{
			URL:        WatchURL(v.ID),
			Title:      v.Title,
			Uploader:   v.Author,
			Duration:   v.Duration,
			Thumbnail:  thumbnail(v.Thumbnails),
			SourceName: sources.SourceYouTube,
		})
	}
	if len(out) == 0 {
		return nil, sources.ErrNoResults
	}
	return out, nil
}

func bestAudio(formats youtube.FormatList) (*youtube.Format, error) {
	candidates := formats.Type("audio")
	if len(candidates) == 0 {
		candidates = formats.WithAudioChannels()
	}
	if len(candidates) == 0 {
		return nil, errors.New("no audio formats found")
	}
	best := &candidates[0]
	for i := range candidates {
		if candidates[i].Bitrate > best.Bitrate {
			best = &candidates[i]
		}
	}
	return best, nil
}

func thumbnail(thumbs youtube.Thumbnails) string {
	if len(thumbs) == 0 {
		return ""
	}
	return thumbs[len(thumbs)-1].URL
}
