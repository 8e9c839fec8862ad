package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/music/sources"
)

var ErrNotPlayable = errors.New("track has no stream url")

// Streamer plays one track at a time into an Opus frame channel.
type Streamer struct {
	open       Opener
	newEncoder func() (encoder, error)
	speaking   func(bool)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	paused  bool
	gate    chan struct{} // closed while not paused
}

// New returns a Streamer decoding through open. speaking, when set, is told
// when audio starts and stops flowing.
func New(open Opener, speaking func(bool)) *Streamer {
	gate := make(chan struct{})
	close(gate)
	return &Streamer{
		open:       open,
		newEncoder: newOpusEncoder,
		speaking:   speaking,
		gate:       gate,
	}
}

// Play stops the current track and starts info. It returns once the source
// is open; decoding continues in the background until the track ends, Stop
// is called or ctx is cancelled.
func (s *Streamer) Play(ctx context.Context, out chan<- []byte, info *sources.TrackInfo) error {
	if !info.Playable() {
		return ErrNotPlayable
	}
	s.Stop()

	enc, err := s.newEncoder()
	if err != nil {
		return err
	}

	playCtx, cancel := context.WithCancel(ctx)
	var src *recoveryReader
	if info.IsLive {
		src, err = newRecoveryReader(playCtx, s.open, info.StreamURL, 0)
	} else {
		src, err = newRecoveryReader(playCtx, s.open, info.StreamURL, info.Duration)
	}
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.running = true
	s.setPausedLocked(false)
	s.mu.Unlock()

	s.speak(true)
	go func() {
		defer close(done)
		defer cancel()
		defer src.Close()

		err := pump(playCtx, src, enc, out, s.waitUnpaused)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("title", info.Title).Msg("[Stream] playback ended with error")
		}

		s.mu.Lock()
		if s.done == done {
			s.running = false
			s.setPausedLocked(false)
		}
		s.mu.Unlock()
		s.speak(false)
	}()
	return nil
}

// Stop ends the current track and waits for its goroutine to exit.
func (s *Streamer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.running = false
	s.setPausedLocked(false)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Streamer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.setPausedLocked(true)
	}
}

func (s *Streamer) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPausedLocked(false)
}

// IsPlaying reports an active, unpaused track.
func (s *Streamer) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

func (s *Streamer) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.paused
}

func (s *Streamer) setPausedLocked(p bool) {
	if p == s.paused {
		return
	}
	s.paused = p
	if p {
		s.gate = make(chan struct{})
	} else {
		close(s.gate)
	}
}

func (s *Streamer) waitUnpaused(ctx context.Context) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Streamer) speak(on bool) {
	if s.speaking != nil {
		s.speaking(on)
	}
}
