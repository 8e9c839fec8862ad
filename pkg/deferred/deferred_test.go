package deferred

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOnlyOnce(t *testing.T) {
	v := New[int]()
	assert.False(t, v.Ready())

	assert.True(t, v.Set(1))
	assert.False(t, v.Set(2))

	got, ok := v.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestWaitReturnsWhenSet(t *testing.T) {
	v := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		v.Set("track")
	}()

	got, err := v.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "track", got)
}

func TestWaitHonoursContext(t *testing.T) {
	v := New[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := v.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, v.Ready())
}

func TestPeekUnset(t *testing.T) {
	v := New[*int]()
	got, ok := v.Peek()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResolved(t *testing.T) {
	v := Resolved(true)
	assert.True(t, v.Ready())
	select {
	case <-v.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestConcurrentSetters(t *testing.T) {
	v := New[int]()
	var wg sync.WaitGroup
	wins := make(chan int, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if v.Set(i) {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
	winner := <-wins
	got, _ := v.Peek()
	assert.Equal(t, winner, got)
}
