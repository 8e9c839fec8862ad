package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/keshon/jukebox/pkg/deferred"
)

// Session is the playback state of one guild.
type Session struct {
	guildID string

	// opMu orders play, stop and move requests of the guild.
	opMu sync.Mutex

	mu         sync.Mutex
	conn       Conn
	queue      *Queue
	skip       bool
	repeat     bool
	paused     bool
	last       Request
	idle       *deferred.Value[bool]
	loopCancel context.CancelFunc
	epoch      uint64
}

func newSession(guildID string) *Session {
	return &Session{guildID: guildID, queue: NewQueue()}
}

func (s *Session) GuildID() string { return s.guildID }

// resetLocked clears the queue and the flags. The epoch bump lets in-flight
// resolutions notice that their queue is gone.
func (s *Session) resetLocked() {
	s.queue.Clear()
	s.skip = false
	s.repeat = false
	s.paused = false
	s.epoch++
}

func (s *Session) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// CheckInvariant reports a disconnected session holding queue or flag state.
func (s *Session) CheckInvariant() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	if n := s.queue.Len(); n > 0 || s.skip || s.repeat || s.paused {
		return fmt.Errorf("guild %s disconnected with queue=%d skip=%t repeat=%t paused=%t",
			s.guildID, n, s.skip, s.repeat, s.paused)
	}
	return nil
}
