// Package player runs one playback session per guild: a queue of lazily
// resolved tracks, a loop that plays them over a voice connection and an
// idle monitor that leaves empty channels.
package player

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/storage"
	"github.com/keshon/jukebox/pkg/jobmgr"
)

const (
	msgFinished   = "Finished playing music!"
	msgInactivity = "Left voice channel due to inactivity!"
	msgAdded      = "Song was added to queue!"
	msgPlaying    = "Playing this song!"
)

type Options struct {
	PollInterval        time.Duration
	IdleTimeout         time.Duration
	ConnectPollInterval time.Duration
	ConnectTimeout      time.Duration
	NotifyTimeout       time.Duration
	SelectTimeout       time.Duration
	SearchResults       int
	QueuePreview        int
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 30 * time.Second
	}
	if o.ConnectPollInterval <= 0 {
		o.ConnectPollInterval = 250 * time.Millisecond
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = 10 * time.Second
	}
	if o.SelectTimeout <= 0 {
		o.SelectTimeout = time.Minute
	}
	if o.SearchResults <= 0 {
		o.SearchResults = 5
	}
	if o.QueuePreview <= 0 {
		o.QueuePreview = 15
	}
	return o
}

// Deps are the player's collaborators. Only Connector and Resolver are required.
type Deps struct {
	Connector Connector
	Resolver  Resolver
	Panel     Panel
	Embeds    Embedder
	Events    EventLogger
	History   History
	Jobs      *jobmgr.Manager
}

type Player struct {
	opts     Options
	deps     Deps
	jobs     *jobmgr.Manager
	registry *Registry
	botID    atomic.Value

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts Options, deps Deps) *Player {
	if deps.Jobs == nil {
		deps.Jobs = jobmgr.NewManager(nil)
	}
	if deps.Events == nil {
		deps.Events = nopEvents{}
	}
	if deps.Embeds == nil {
		deps.Embeds = plainEmbeds{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		opts:     opts.withDefaults(),
		deps:     deps,
		jobs:     deps.Jobs,
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
	p.botID.Store("")
	return p
}

// SetBotID tells the idle monitor which member is the bot itself.
func (p *Player) SetBotID(id string) { p.botID.Store(id) }

func (p *Player) Registry() *Registry { return p.registry }

// Subscribe routes platform lifecycle events to the player.
func (p *Player) Subscribe(src EventSource) {
	src.OnGuildAvailable(p.OnGuildAvailable)
	src.OnGuildRemoved(p.OnGuildRemoved)
	src.OnVoiceStateChange(p.OnVoiceStateChange)
}

func (p *Player) OnGuildAvailable(guildID string) {
	p.registry.GetOrCreate(guildID)
}

func (p *Player) OnGuildRemoved(guildID string) {
	s, ok := p.registry.Remove(guildID)
	if !ok {
		return
	}
	s.mu.Lock()
	release := p.detachLocked(s, s.conn, "")
	s.mu.Unlock()
	release()
}

// Shutdown disconnects every guild and waits for background work.
func (p *Player) Shutdown(ctx context.Context) error {
	for _, id := range p.registry.GuildIDs() {
		if s, ok := p.registry.Get(id); ok {
			s.mu.Lock()
			release := p.detachLocked(s, s.conn, "")
			s.mu.Unlock()
			release()
		}
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play queues req, connecting to or moving into the requester's channel
// as needed. Resolution continues in the background.
func (p *Player) Play(ctx context.Context, req Request) error {
	if req.VoiceChannelID == "" {
		return ErrNotInVoice
	}
	s := p.registry.GetOrCreate(req.GuildID)
	s.opMu.Lock()
	defer s.opMu.Unlock()

	track := newTrack(req.Author)

	s.mu.Lock()
	s.last = req
	conn := s.conn
	if conn != nil && conn.ChannelID() == req.VoiceChannelID {
		p.insertLocked(s, track, req.Now)
		epoch := s.epoch
		s.mu.Unlock()
		p.resolveAsync(s, conn, epoch, track, req)
		return nil
	}
	s.mu.Unlock()

	if conn == nil {
		return p.connect(ctx, s, track, req)
	}
	return p.move(ctx, s, conn, track, req)
}

func (p *Player) connect(ctx context.Context, s *Session, track *Track, req Request) error {
	conn, err := p.deps.Connector.Connect(ctx, req.GuildID, req.VoiceChannelID)
	if err != nil {
		return fmt.Errorf("connect to voice channel: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.resetLocked()
	p.insertLocked(s, track, req.Now)
	epoch := s.epoch
	job, err := p.jobs.StartAsync(p.ctx, loopName(s.guildID), func(ctx context.Context) error {
		return p.playLoop(ctx, s, conn)
	})
	if err != nil {
		release := p.detachLocked(s, conn, "")
		s.mu.Unlock()
		release()
		return fmt.Errorf("%w: %w", ErrUnexpectedLoop, err)
	}
	name := job.Name
	s.loopCancel = func() { _ = p.jobs.Stop(name) }
	s.mu.Unlock()

	log.Info().Str("guild", s.guildID).Str("channel", req.VoiceChannelID).Msg("[Player] connected")
	p.resolveAsync(s, conn, epoch, track, req)
	return nil
}

// move drops the current queue, follows the requester into their channel
// and starts over with the new request.
func (p *Player) move(ctx context.Context, s *Session, conn Conn, track *Track, req Request) error {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return ErrConnectionLost
	}
	s.resetLocked()
	s.queue.Append(track)
	epoch := s.epoch
	idle := p.takeIdleLocked(s)
	s.mu.Unlock()

	conn.Stop()
	if idle != nil {
		idle.Set(false)
	}

	if err := conn.Move(ctx, req.VoiceChannelID); err != nil {
		track.Info.Set(nil)
		p.teardown(s, conn, msgFinished)
		return fmt.Errorf("move to voice channel: %w", err)
	}
	if err := p.awaitChannel(ctx, conn, req.VoiceChannelID); err != nil {
		track.Info.Set(nil)
		p.teardown(s, conn, msgFinished)
		return err
	}

	log.Info().Str("guild", s.guildID).Str("channel", req.VoiceChannelID).Msg("[Player] moved")
	p.resolveAsync(s, conn, epoch, track, req)
	return nil
}

func (p *Player) awaitChannel(ctx context.Context, conn Conn, channelID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ConnectTimeout)
	defer cancel()

	t := time.NewTicker(p.opts.ConnectPollInterval)
	defer t.Stop()
	for {
		if conn.IsConnected() && conn.ChannelID() == channelID {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for channel %s: %w", ErrConnectionLost, channelID, ctx.Err())
		case <-t.C:
		}
	}
}

func (p *Player) insertLocked(s *Session, t *Track, now bool) {
	if now {
		s.queue.Prepend(t)
	} else {
		s.queue.Append(t)
	}
}

// Stop ends playback and leaves the voice channel.
func (p *Player) Stop(guildID string, by Requester) error {
	s, ok := p.registry.Get(guildID)
	if !ok {
		return ErrUnknownGuild
	}
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	channel := conn.ChannelID()
	release := p.detachLocked(s, conn, fmt.Sprintf("DJ %s decided to stop!", by.Name))
	s.mu.Unlock()

	p.deps.Events.Finished(guildID, channel)
	release()
	return nil
}

// Pause toggles the manual pause and reports the new state.
func (p *Player) Pause(guildID string) (bool, error) {
	var paused bool
	err := p.withConn(guildID, func(s *Session) error {
		s.paused = !s.paused
		if s.paused {
			if s.conn.IsPlaying() {
				s.conn.Pause()
			}
		} else if s.conn.IsPaused() {
			s.conn.Resume()
		}
		paused = s.paused
		return nil
	})
	return paused, err
}

// Repeat toggles repeat mode and reports the new state.
func (p *Player) Repeat(guildID string) (bool, error) {
	var repeat bool
	err := p.withConn(guildID, func(s *Session) error {
		s.repeat = !s.repeat
		repeat = s.repeat
		return nil
	})
	return repeat, err
}

// Skip asks the loop to stop the current track. The request stays pending
// when nothing is playing.
func (p *Player) Skip(guildID string) error {
	var channel string
	err := p.withConn(guildID, func(s *Session) error {
		s.skip = true
		channel = s.conn.ChannelID()
		return nil
	})
	if err != nil {
		return err
	}
	p.deps.Events.Skip(guildID, channel)
	return nil
}

// QueueView is a snapshot of the upcoming tracks.
type QueueView struct {
	Tracks []*Track
	Total  int
	Repeat bool
	Paused bool
}

func (p *Player) Queue(guildID string) (QueueView, error) {
	var view QueueView
	err := p.withConn(guildID, func(s *Session) error {
		if s.queue.Len() == 0 {
			return ErrQueueEmpty
		}
		view = QueueView{
			Tracks: s.queue.Peek(p.opts.QueuePreview),
			Total:  s.queue.Len(),
			Repeat: s.repeat,
			Paused: s.paused,
		}
		return nil
	})
	return view, err
}

// Wrong removes the most recently queued track and returns it. A track
// still resolving is never announced.
func (p *Player) Wrong(guildID string) (*Track, error) {
	var removed *Track
	err := p.withConn(guildID, func(s *Session) error {
		t, ok := s.queue.RemoveLast()
		if !ok {
			return ErrQueueEmpty
		}
		removed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.deleteMessage(removed.drop())
	return removed, nil
}

func (p *Player) Shuffle(guildID string) (ShuffleResult, error) {
	var res ShuffleResult
	err := p.withConn(guildID, func(s *Session) error {
		res = s.queue.Shuffle()
		return nil
	})
	return res, err
}

// Available reports whether the guild has no voice connection.
func (p *Player) Available(guildID string) bool {
	s, ok := p.registry.Get(guildID)
	return !ok || !s.connected()
}

func (p *Player) Contains(guildID string) bool {
	_, ok := p.registry.Get(guildID)
	return ok
}

// TimeoutPending reports an armed idle countdown on a connected guild.
func (p *Player) TimeoutPending(guildID string) bool {
	s, ok := p.registry.Get(guildID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.idle != nil
}

// CurrentVoiceChannel returns the connected channel id, or "".
func (p *Player) CurrentVoiceChannel(guildID string) string {
	s, ok := p.registry.Get(guildID)
	if !ok {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ""
	}
	return s.conn.ChannelID()
}

func (p *Player) withConn(guildID string, fn func(s *Session) error) error {
	s, ok := p.registry.Get(guildID)
	if !ok {
		return ErrUnknownGuild
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	return fn(s)
}

func (p *Player) teardown(s *Session, conn Conn, msg string) {
	s.mu.Lock()
	release := p.detachLocked(s, conn, msg)
	s.mu.Unlock()
	release()
}

// detachLocked drops conn from the session and resets it. The returned func
// does the blocking cleanup and must run after s.mu is released. Nothing
// happens when conn is no longer the session's connection.
func (p *Player) detachLocked(s *Session, conn Conn, msg string) func() {
	if conn == nil || s.conn != conn {
		return func() {}
	}
	channel := s.last.Channel
	idle := p.takeIdleLocked(s)
	if s.loopCancel != nil {
		s.loopCancel()
	}
	s.conn = nil
	s.loopCancel = nil
	s.resetLocked()

	return func() {
		if idle != nil {
			idle.Set(false)
		}
		conn.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), p.opts.ConnectTimeout)
		defer cancel()
		if err := conn.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Str("guild", s.guildID).Msg("[Player] disconnect failed")
		}
		log.Info().Str("guild", s.guildID).Msg("[Player] left voice channel")
		if msg != "" {
			p.notify(channel, msg, nil)
		}
	}
}

// notify posts to a text channel. Failures are logged and swallowed.
func (p *Player) notify(ch Channel, text string, embed *discordgo.MessageEmbed) Message {
	if ch == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(p.ctx, p.opts.NotifyTimeout)
	defer cancel()
	m, err := ch.Send(ctx, text, embed)
	if err != nil {
		log.Warn().Err(fmt.Errorf("%w: %w", ErrTransientNotify, err)).Msg("[Player] notify failed")
		return nil
	}
	return m
}

func (p *Player) deleteMessage(m Message) {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(p.ctx, p.opts.NotifyTimeout)
	defer cancel()
	if err := m.Delete(ctx); err != nil {
		log.Debug().Err(err).Msg("[Player] delete message failed")
	}
}

func (p *Player) recordHistory(guildID string, t *Track, info *sources.TrackInfo) {
	if p.deps.History == nil {
		return
	}
	rec := storage.TrackRecord{
		Title:       info.DisplayTitle(),
		URL:         info.URL,
		Source:      info.SourceName,
		Duration:    info.Duration,
		IsLive:      info.IsLive,
		RequestedBy: t.Requester.Name,
		PlayedAt:    time.Now(),
	}
	if err := p.deps.History.AppendTrack(guildID, rec); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("[Player] failed to store track history")
	}
}

func loopName(guildID string) string { return "playback:" + guildID }

type nopEvents struct{}

func (nopEvents) Error(string, error) {}
func (nopEvents) Skip(string, string) {}
func (nopEvents) Added(string, *sources.TrackInfo) {}
func (nopEvents) Playing(string, *sources.TrackInfo, string) {}
func (nopEvents) Finished(string, string) {}

type plainEmbeds struct{}

func (plainEmbeds) Track(r Requester, info *sources.TrackInfo, title string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: info.DisplayTitle(), URL: info.URL}
}
