// Package resolver picks the right source for a query or url and expands
// playlists into resolved tracks.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/music/sources/radio"
	"github.com/keshon/jukebox/internal/music/sources/youtube"
	"github.com/keshon/jukebox/internal/music/sources/ytdlp"
	"github.com/keshon/jukebox/pkg/retrylimit"
	"github.com/keshon/jukebox/pkg/util"
)

// Backend turns a url into a playable track.
type Backend interface {
	Name() string
	Match(raw string) bool
	Resolve(ctx context.Context, raw string) (*sources.TrackInfo, error)
}

// Searcher runs free-text searches.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]sources.TrackInfo, error)
}

// Lister enumerates playlist entries.
type Lister interface {
	Playlist(ctx context.Context, raw string, limit int) ([]sources.TrackInfo, error)
}

type Options struct {
	Workers       int
	PlaylistLimit int
}

type Resolver struct {
	backends  []Backend
	searchers []Searcher
	listers   []Lister
	opts      Options
}

// New wires explicit backends. Order matters: the first matching backend
// that succeeds wins.
func New(opts Options, backends []Backend, searchers []Searcher, listers []Lister) *Resolver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Resolver{backends: backends, searchers: searchers, listers: listers, opts: opts}
}

// Default builds the production chain: native YouTube first, then radio
// streams, then yt-dlp for everything else.
func Default(opts Options) *Resolver {
	lim := retrylimit.NewLimiter(4, 1, 8)
	httpClient := &http.Client{Timeout: 15 * time.Second}

	yt := youtube.New(httpClient, lim)
	dl := ytdlp.New(lim)
	rd := radio.New(nil)

	return New(opts,
		[]Backend{yt, rd, dl},
		[]Searcher{yt, dl},
		[]Lister{yt, dl},
	)
}

// Search returns up to limit candidates for query.
func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]sources.TrackInfo, error) {
	var errs []error
	for _, s := range r.searchers {
		res, err := s.Search(ctx, query, limit)
		if err == nil && len(res) > 0 {
			return res, nil
		}
		if err == nil {
			err = sources.ErrNoResults
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("search %q: %w", query, errors.Join(errs...))
}

// Resolve returns a playable track for raw.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*sources.TrackInfo, error) {
	raw = strings.TrimSpace(raw)
	if !sources.IsURL(raw) {
		return nil, fmt.Errorf("%w: %s", sources.ErrUnsupported, raw)
	}

	var errs []error
	for _, b := range r.backends {
		if !b.Match(raw) {
			continue
		}
		info, err := b.Resolve(ctx, raw)
		if err == nil && info.Playable() {
			return info, nil
		}
		if err == nil {
			err = sources.ErrNoStream
		}
		log.Debug().Err(err).Str("backend", b.Name()).Str("url", raw).Msg("[Resolver] backend failed")
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", sources.ErrUnsupported, raw)
	}
	return nil, fmt.Errorf("resolve %s: %w", raw, errors.Join(errs...))
}

// IsPlaylist reports whether raw names a collection rather than one item.
func (r *Resolver) IsPlaylist(raw string) bool {
	if youtube.IsYouTubeURL(raw) {
		return youtube.PlaylistID(raw) != ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.Contains(p, "/sets/") || strings.Contains(p, "/album/") || strings.Contains(p, "/playlist")
}

// LeadURL returns the single item a playlist url points at, with the list
// parameter removed. It is empty when the url names the playlist alone.
func (r *Resolver) LeadURL(raw string) string {
	if youtube.IsYouTubeURL(raw) && youtube.VideoID(raw) != "" {
		return youtube.CleanVideoURL(raw)
	}
	return ""
}

// Playlist lists raw's entries in order and resolves their streams in
// parallel. Entries that fail to resolve are kept without a stream url so the
// caller can report them in place.
func (r *Resolver) Playlist(ctx context.Context, raw string) ([]sources.TrackInfo, error) {
	var (
		entries []sources.TrackInfo
		errs    []error
	)
	for _, l := range r.listers {
		res, err := l.Playlist(ctx, raw, r.opts.PlaylistLimit)
		if err == nil && len(res) > 0 {
			entries = res
			break
		}
		if err == nil {
			err = sources.ErrNoResults
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if entries == nil {
		return nil, fmt.Errorf("playlist %s: %w", raw, errors.Join(errs...))
	}

	return util.ParallelMap(ctx, entries, r.opts.Workers, func(ctx context.Context, e sources.TrackInfo) (sources.TrackInfo, error) {
		info, err := r.Resolve(ctx, e.URL)
		if err != nil {
			if ctx.Err() != nil {
				return e, ctx.Err()
			}
			log.Warn().Err(err).Str("url", e.URL).Msg("[Resolver] playlist entry unavailable")
			return e, nil
		}
		return *info, nil
	})
}
