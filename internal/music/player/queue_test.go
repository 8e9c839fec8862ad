package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(titles ...string) []*Track {
	out := make([]*Track, len(titles))
	for i, title := range titles {
		out[i] = resolvedTrack(Requester{Name: "tester"}, info(title))
	}
	return out
}

func drain(q *Queue) []string {
	var titles []string
	for {
		t, ok := q.PopFront()
		if !ok {
			return titles
		}
		titles = append(titles, t.Title())
	}
}

func TestQueuePopOrderFollowsAppendAndPrepend(t *testing.T) {
	ops := []struct {
		front bool
		title string
	}{
		{false, "a"}, {false, "b"}, {true, "c"}, {false, "d"}, {true, "e"}, {true, "f"}, {false, "g"},
	}

	q := NewQueue()
	var model []string
	for _, op := range ops {
		tr := named(op.title)[0]
		if op.front {
			q.Prepend(tr)
			model = append([]string{op.title}, model...)
		} else {
			q.Append(tr)
			model = append(model, op.title)
		}
	}

	assert.Equal(t, len(model), q.Len())
	assert.Equal(t, model, drain(q))
	assert.Equal(t, 0, q.Len())
}

func TestQueuePrependKeepsGroupOrder(t *testing.T) {
	q := NewQueue()
	q.Append(named("x")...)
	q.Prepend(named("a", "b", "c")...)
	assert.Equal(t, []string{"a", "b", "c", "x"}, drain(q))
}

func TestQueueInsertAfter(t *testing.T) {
	q := NewQueue()
	tracks := named("a", "b", "c")
	q.Append(tracks...)

	require.True(t, q.InsertAfter(tracks[0], named("a1", "a2")...))
	assert.Equal(t, []string{"a", "a1", "a2", "b", "c"}, drain(q))

	assert.False(t, q.InsertAfter(tracks[0], named("z")...))
	assert.Equal(t, 0, q.Len())
}

func TestQueueRemoveLastAndPeek(t *testing.T) {
	q := NewQueue()
	_, ok := q.RemoveLast()
	assert.False(t, ok)

	q.Append(named("a", "b", "c")...)
	last, ok := q.RemoveLast()
	require.True(t, ok)
	assert.Equal(t, "c", last.Title())

	peek := q.Peek(10)
	require.Len(t, peek, 2)
	peek[0] = nil
	first, _ := q.PopFront()
	assert.Equal(t, "a", first.Title(), "peek must return a copy")
}

func TestQueueShuffle(t *testing.T) {
	q := NewQueue()
	assert.Equal(t, ShuffleEmpty, q.Shuffle())

	q.Append(named("a")...)
	assert.Equal(t, ShuffleSingle, q.Shuffle())

	q.Append(named("b", "c", "d")...)
	assert.Equal(t, Shuffled, q.Shuffle())
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, drain(q))
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Append(named("a", "b")...)
	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.PopFront()
	assert.False(t, ok)
}
