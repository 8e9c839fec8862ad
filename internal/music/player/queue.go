package player

import "math/rand/v2"

type ShuffleResult int

const (
	ShuffleEmpty ShuffleResult = iota
	ShuffleSingle
	Shuffled
)

// Queue is an ordered list of tracks. It is not safe for concurrent use;
// the owning Session's mutex guards it.
type Queue struct {
	items []*Track
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) Append(t ...*Track) {
	q.items = append(q.items, t...)
}

func (q *Queue) Prepend(t ...*Track) {
	q.items = append(append(make([]*Track, 0, len(q.items)+len(t)), t...), q.items...)
}

// InsertAfter puts tracks right behind anchor. It reports false and changes
// nothing when anchor is not queued.
func (q *Queue) InsertAfter(anchor *Track, tracks ...*Track) bool {
	for i, t := range q.items {
		if t != anchor {
			continue
		}
		rest := append(append(make([]*Track, 0, len(q.items)-i-1+len(tracks)), tracks...), q.items[i+1:]...)
		q.items = append(q.items[:i+1], rest...)
		return true
	}
	return false
}

func (q *Queue) PopFront() (*Track, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

func (q *Queue) RemoveLast() (*Track, bool) {
	n := len(q.items)
	if n == 0 {
		return nil, false
	}
	t := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return t, true
}

// Shuffle permutes the queue when it holds more than one track.
func (q *Queue) Shuffle() ShuffleResult {
	switch len(q.items) {
	case 0:
		return ShuffleEmpty
	case 1:
		return ShuffleSingle
	}
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
	return Shuffled
}

// Peek copies up to n tracks from the front.
func (q *Queue) Peek(n int) []*Track {
	if n > len(q.items) || n < 0 {
		n = len(q.items)
	}
	out := make([]*Track, n)
	copy(out, q.items[:n])
	return out
}

func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}
