package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/music/sources"
)

func (p *Player) resolveAsync(s *Session, conn Conn, epoch uint64, track *Track, req Request) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.resolve(p.ctx, s, conn, epoch, track, req)
	}()
}

// resolve fills track from the request query. The track's info is always
// set before resolve returns, to nil on failure.
func (p *Player) resolve(ctx context.Context, s *Session, conn Conn, epoch uint64, track *Track, req Request) {
	defer track.Info.Set(nil)

	query := strings.TrimSpace(req.Query)
	switch {
	case !sources.IsURL(query):
		info, err := p.searchAndSelect(ctx, req, query)
		p.complete(s, conn, track, req, info, err)
	case p.deps.Resolver.IsPlaylist(query):
		p.resolvePlaylist(ctx, s, conn, epoch, track, req, query)
	default:
		info, err := p.deps.Resolver.Resolve(ctx, query)
		p.complete(s, conn, track, req, info, err)
	}
}

func (p *Player) searchAndSelect(ctx context.Context, req Request, query string) (*sources.TrackInfo, error) {
	results, err := p.deps.Resolver.Search(ctx, query, p.opts.SearchResults)
	if err != nil {
		return nil, err
	}
	if p.deps.Panel == nil {
		return nil, ErrNoSelection
	}

	selCtx, cancel := context.WithTimeout(ctx, p.opts.SelectTimeout)
	choice, err := p.deps.Panel.Select(selCtx, req, results)
	cancel()
	if err != nil {
		return nil, err
	}
	if choice == nil {
		return nil, ErrNoSelection
	}
	if choice.Playable() {
		return choice, nil
	}
	return p.deps.Resolver.Resolve(ctx, choice.URL)
}

// resolvePlaylist fills track with the playlist's lead (the video named in
// the url, or the first entry) and queues the remaining entries behind it.
func (p *Player) resolvePlaylist(ctx context.Context, s *Session, conn Conn, epoch uint64, track *Track, req Request, url string) {
	lead := p.deps.Resolver.LeadURL(url)
	if lead != "" {
		info, err := p.deps.Resolver.Resolve(ctx, lead)
		p.complete(s, conn, track, req, info, err)
	}

	entries, err := p.deps.Resolver.Playlist(ctx, url)
	if err == nil && len(entries) == 0 {
		err = sources.ErrNoResults
	}
	if err != nil {
		if lead == "" {
			p.complete(s, conn, track, req, nil, err)
		} else if !isCanceled(err) {
			log.Warn().Err(err).Str("guild", s.guildID).Str("url", url).Msg("[Player] playlist expansion failed")
		}
		return
	}

	if lead == "" {
		info := entries[0]
		p.complete(s, conn, track, req, &info, nil)
		entries = entries[1:]
	} else if info, ok := track.Info.Peek(); ok && info != nil {
		entries = withoutURL(entries, info.URL)
	}
	if len(entries) == 0 {
		return
	}

	tracks := make([]*Track, len(entries))
	for i := range entries {
		tracks[i] = resolvedTrack(req.Author, &entries[i])
	}

	s.mu.Lock()
	if s.conn != conn || s.epoch != epoch {
		s.mu.Unlock()
		log.Debug().Str("guild", s.guildID).Msg("[Player] session changed, dropping playlist")
		return
	}
	if req.Now {
		if !s.queue.InsertAfter(track, tracks...) {
			s.queue.Prepend(tracks...)
		}
	} else {
		s.queue.Append(tracks...)
	}
	s.mu.Unlock()

	log.Info().Str("guild", s.guildID).Int("tracks", len(tracks)).Msg("[Player] playlist queued")
}

// complete publishes the resolution result and, when something is already
// playing, announces the addition.
func (p *Player) complete(s *Session, conn Conn, track *Track, req Request, info *sources.TrackInfo, err error) {
	if err != nil {
		info = nil
		if !isCanceled(err) {
			err = fmt.Errorf("%w: %q: %w", ErrResolutionFailure, req.Query, err)
			log.Warn().Err(err).Str("guild", s.guildID).Msg("[Player] resolve failed")
			p.deps.Events.Error(s.guildID, err)
		}
	}

	announce := false
	if info != nil {
		s.mu.Lock()
		announce = s.conn == conn && (conn.IsPlaying() || conn.IsPaused())
		s.mu.Unlock()
	}
	if !track.Info.Set(info) || info == nil || track.isDropped() {
		return
	}
	p.deps.Events.Added(s.guildID, info)

	if !announce {
		return
	}
	m := p.notify(req.Channel, "", p.deps.Embeds.Track(req.Author, info, msgAdded))
	if m != nil && !track.attachNotice(m) {
		p.deleteMessage(m)
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func withoutURL(entries []sources.TrackInfo, url string) []sources.TrackInfo {
	for i := range entries {
		if entries[i].URL == url {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
