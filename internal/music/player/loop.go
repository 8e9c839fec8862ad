package player

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// playLoop plays the session's queue over conn until the queue runs dry or
// the connection goes away. It is the only consumer of the queue.
func (p *Player) playLoop(ctx context.Context, s *Session, conn Conn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpectedLoop, r)
		}
		if err != nil {
			log.Error().Err(err).Str("guild", s.guildID).Msg("[Player] playback loop failed")
			p.deps.Events.Error(s.guildID, err)
		}
		p.teardown(s, conn, msgFinished)
	}()

	for {
		s.mu.Lock()
		if s.conn != conn {
			s.mu.Unlock()
			return nil
		}
		track, ok := s.queue.PopFront()
		if !ok {
			release := p.detachLocked(s, conn, msgFinished)
			s.mu.Unlock()
			release()
			return nil
		}
		epoch := s.epoch
		s.mu.Unlock()

		info, err := track.wait(ctx)
		if err != nil {
			return nil
		}

		s.mu.Lock()
		stale := s.conn != conn || s.epoch != epoch
		s.mu.Unlock()
		if stale {
			continue
		}

		if !info.Playable() {
			log.Warn().Str("guild", s.guildID).Msg("[Player] invalid track")
			continue
		}
		if err := conn.Play(ctx, info); err != nil {
			log.Warn().Err(err).Str("guild", s.guildID).Str("title", info.DisplayTitle()).Msg("[Player] invalid track")
			continue
		}

		p.deleteMessage(track.start())
		s.mu.Lock()
		channel := s.last.Channel
		s.mu.Unlock()
		p.notify(channel, "", p.deps.Embeds.Track(track.Requester, info, msgPlaying))
		p.deps.Events.Playing(s.guildID, info, conn.ChannelID())
		p.recordHistory(s.guildID, track, info)
		log.Info().Str("guild", s.guildID).Str("title", info.DisplayTitle()).Msg("[Player] playing")

		if !p.waitTrackEnd(ctx, s, conn) {
			if ctx.Err() == nil {
				log.Warn().Err(ErrConnectionLost).Str("guild", s.guildID).Msg("[Player] stopping loop")
			}
			return nil
		}

		s.mu.Lock()
		if s.conn != conn {
			s.mu.Unlock()
			return nil
		}
		switch {
		case s.skip:
			s.skip = false
			s.mu.Unlock()
			conn.Stop()
		case s.repeat && s.epoch == epoch:
			s.queue.Prepend(track)
			s.mu.Unlock()
		default:
			s.mu.Unlock()
		}
	}
}

// waitTrackEnd polls until the current track ends or a skip is requested.
// It reports false when the connection is gone.
func (p *Player) waitTrackEnd(ctx context.Context, s *Session, conn Conn) bool {
	t := time.NewTicker(p.opts.PollInterval)
	defer t.Stop()

	for {
		s.mu.Lock()
		current := s.conn == conn
		skip := s.skip
		s.mu.Unlock()

		if !current || !conn.IsConnected() {
			return false
		}
		if skip || (!conn.IsPlaying() && !conn.IsPaused()) {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
}
