package player

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/pkg/deferred"
)

// OnVoiceStateChange reacts to members joining or leaving the bot's channel.
func (p *Player) OnVoiceStateChange(ev VoiceEvent) {
	if ev.BeforeChannelID == ev.AfterChannelID {
		return
	}
	s, ok := p.registry.Get(ev.GuildID)
	if !ok {
		return
	}

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return
	}
	channel := conn.ChannelID()
	if ev.BeforeChannelID != channel && ev.AfterChannelID != channel {
		s.mu.Unlock()
		return
	}

	if botID, _ := p.botID.Load().(string); botID != "" && ev.UserID == botID && ev.AfterChannelID == "" {
		release := p.detachLocked(s, conn, msgFinished)
		s.mu.Unlock()
		release()
		return
	}

	if conn.Members() < 2 {
		idle := p.armIdleLocked(s)
		s.mu.Unlock()
		if idle != nil {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				p.runCountdown(s, conn, idle)
			}()
		}
		return
	}
	s.mu.Unlock()
	p.cancelIdle(s, true)
}

// armIdleLocked returns a new countdown signal, or nil when one is already
// armed.
func (p *Player) armIdleLocked(s *Session) *deferred.Value[bool] {
	if s.idle != nil {
		return nil
	}
	s.idle = deferred.New[bool]()
	return s.idle
}

func (p *Player) takeIdleLocked(s *Session) *deferred.Value[bool] {
	idle := s.idle
	s.idle = nil
	return idle
}

// cancelIdle completes a pending countdown. resume says whether paused
// playback should continue.
func (p *Player) cancelIdle(s *Session, resume bool) {
	s.mu.Lock()
	idle := p.takeIdleLocked(s)
	s.mu.Unlock()
	if idle != nil {
		idle.Set(resume)
	}
}

func (p *Player) runCountdown(s *Session, conn Conn, idle *deferred.Value[bool]) {
	defer func() {
		s.mu.Lock()
		if s.idle == idle {
			s.idle = nil
		}
		s.mu.Unlock()
	}()

	s.mu.Lock()
	channel := s.last.Channel
	s.mu.Unlock()

	notice := p.notify(channel, fmt.Sprintf("I am left alone, I will leave VC in %d seconds!", int(p.opts.IdleTimeout.Seconds())), nil)
	if conn.IsPlaying() {
		conn.Pause()
	}
	log.Info().Str("guild", s.guildID).Dur("timeout", p.opts.IdleTimeout).Msg("[Player] alone in voice channel")

	timer := time.NewTimer(p.opts.IdleTimeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		if idle.Set(false) {
			p.teardown(s, conn, msgInactivity)
			return
		}
	case <-idle.Done():
	case <-p.ctx.Done():
		return
	}

	p.deleteMessage(notice)
	if resume, _ := idle.Peek(); !resume {
		return
	}
	s.mu.Lock()
	current, paused := s.conn == conn, s.paused
	s.mu.Unlock()
	if current && !paused && conn.IsPaused() {
		conn.Resume()
	}
}
