package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetClearsEverything(t *testing.T) {
	states := []func(s *Session){
		func(s *Session) {},
		func(s *Session) { s.skip = true },
		func(s *Session) { s.repeat, s.paused = true, true },
		func(s *Session) {
			s.queue.Append(named("a", "b")...)
			s.skip, s.repeat, s.paused = true, true, true
		},
	}
	for _, prepare := range states {
		s := newSession("g")
		prepare(s)
		before := s.epoch

		s.mu.Lock()
		s.resetLocked()
		s.mu.Unlock()

		assert.Equal(t, 0, s.queue.Len())
		assert.False(t, s.skip)
		assert.False(t, s.repeat)
		assert.False(t, s.paused)
		assert.Greater(t, s.epoch, before)
		assert.NoError(t, s.CheckInvariant())
	}
}

func TestCheckInvariantReportsDisconnectedState(t *testing.T) {
	s := newSession("g")
	s.queue.Append(named("a")...)
	assert.Error(t, s.CheckInvariant())

	s.conn = newFakeConn("vc")
	assert.NoError(t, s.CheckInvariant())
}

func TestArmIdleIsIdempotent(t *testing.T) {
	p := New(Options{}, Deps{})
	s := newSession("g")

	s.mu.Lock()
	first := p.armIdleLocked(s)
	second := p.armIdleLocked(s)
	s.mu.Unlock()

	require.NotNil(t, first)
	assert.Nil(t, second)
	assert.Same(t, first, s.idle)

	p.cancelIdle(s, true)
	resume, ok := first.Peek()
	assert.True(t, ok)
	assert.True(t, resume)
	assert.Nil(t, s.idle)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate("b")
	assert.Same(t, a, r.GetOrCreate("b"))
	r.GetOrCreate("a")

	assert.Equal(t, []string{"a", "b"}, r.GuildIDs())

	removed, ok := r.Remove("b")
	require.True(t, ok)
	assert.Same(t, a, removed)
	_, ok = r.Get("b")
	assert.False(t, ok)
}
