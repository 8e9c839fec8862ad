// Package ytdlp extracts media through the yt-dlp binary. It handles every
// site yt-dlp knows (SoundCloud, Bandcamp, Twitch VODs...) and backs up the
// native YouTube client when that one gets blocked.
package ytdlp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/pkg/retrylimit"
)

const (
	metaTemplate  = "%(url)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(webpage_url)s\t%(is_live)s\t%(thumbnail)s"
	entryTemplate = "%(url)s\t%(title)s\t%(uploader)s\t%(duration)s"
)

// Runner executes yt-dlp with args and returns its standard output.
type Runner func(ctx context.Context, build func(*ytdlp.Command) *ytdlp.Command, args ...string) (string, error)

type Source struct {
	run Runner
	lim *retrylimit.Limiter
}

// New returns a Source using the yt-dlp binary from PATH.
func New(lim *retrylimit.Limiter) *Source {
	return &Source{run: runYtdlp, lim: lim}
}

func runYtdlp(ctx context.Context, build func(*ytdlp.Command) *ytdlp.Command, args ...string) (string, error) {
	cmd := build(ytdlp.New().Quiet().NoWarnings().IgnoreConfig())
	res, err := cmd.Run(ctx, args...)
	if err != nil {
		if res != nil && strings.TrimSpace(res.Stderr) != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return "", err
	}
	return res.Stdout, nil
}

func (s *Source) Name() string { return sources.SourceYtdlp }

// Match accepts any http(s) url; yt-dlp decides at resolve time.
func (s *Source) Match(raw string) bool {
	return sources.IsURL(raw)
}

// Resolve extracts the best audio stream of a single media page.
func (s *Source) Resolve(ctx context.Context, raw string) (*sources.TrackInfo, error) {
	var out string
	err := retrylimit.Do(ctx, s.lim, retrylimit.Policy{Attempts: 2, Name: "yt-dlp resolve"}, func(ctx context.Context) error {
		var err error
		out, err = s.run(ctx, func(c *ytdlp.Command) *ytdlp.Command {
			return c.Print(metaTemplate)
		}, "--no-playlist", "-f", "bestaudio/best", "--skip-download", raw)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("yt-dlp resolve %s: %w", raw, err)
	}

	info, err := parseMeta(out)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp resolve %s: %w", raw, err)
	}
	if info.URL == "" {
		info.URL = raw
	}
	return info, nil
}

// Search runs a "ytsearchN:" query. Results carry page urls only.
func (s *Source) Search(ctx context.Context, query string, limit int) ([]sources.TrackInfo, error) {
	if limit < 1 {
		limit = 1
	}
	out, err := s.run(ctx, func(c *ytdlp.Command) *ytdlp.Command {
		return c.FlatPlaylist().Print(entryTemplate).PlaylistItems(fmt.Sprintf("1-%d", limit))
	}, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search %q: %w", query, err)
	}
	entries := parseEntries(out, limit)
	if len(entries) == 0 {
		return nil, sources.ErrNoResults
	}
	return entries, nil
}

// Playlist lists up to limit playlist entries without stream urls.
func (s *Source) Playlist(ctx context.Context, raw string, limit int) ([]sources.TrackInfo, error) {
	out, err := s.run(ctx, func(c *ytdlp.Command) *ytdlp.Command {
		c = c.FlatPlaylist().Print(entryTemplate)
		if limit > 0 {
			c = c.PlaylistItems(fmt.Sprintf("1-%d", limit))
		}
		return c
	}, "--yes-playlist", raw)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp playlist %s: %w", raw, err)
	}
	entries := parseEntries(out, limit)
	if len(entries) == 0 {
		return nil, sources.ErrNoResults
	}
	return entries, nil
}

func parseMeta(out string) (*sources.TrackInfo, error) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		f := strings.Split(line, "\t")
		if len(f) < 7 {
			continue
		}
		stream := field(f[0])
		if stream == "" {
			continue
		}
		return &sources.TrackInfo{
			StreamURL:  stream,
			Title:      field(f[1]),
			Uploader:   field(f[2]),
			Duration:   seconds(f[3]),
			URL:        field(f[4]),
			IsLive:     f[5] == "True",
			Thumbnail:  field(f[6]),
			SourceName: sources.SourceYtdlp,
		}, nil
	}
	return nil, sources.ErrNoStream
}

func parseEntries(out string, limit int) []sources.TrackInfo {
	var entries []sources.TrackInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if limit > 0 && len(entries) == limit {
			break
		}
		f := strings.Split(line, "\t")
		if len(f) < 4 || field(f[0]) == "" {
			continue
		}
		entries = append(entries, sources.TrackInfo{
			URL:        field(f[0]),
			Title:      field(f[1]),
			Uploader:   field(f[2]),
			Duration:   seconds(f[3]),
			SourceName: sources.SourceYtdlp,
		})
	}
	return entries
}

// field maps yt-dlp's "NA" placeholder to empty.
func field(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" || s == "None" {
		return ""
	}
	return s
}

func seconds(s string) time.Duration {
	v, err := strconv.ParseFloat(field(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
