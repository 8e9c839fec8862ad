package stream

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	maxRecoveryAttempts = 3
	// EOF closer than this to the known end counts as a normal finish.
	recoveryTail = 5 * time.Second
)

// recoveryReader reopens a stream at the current position when it ends well
// before the track's known duration. Live streams are never reopened.
type recoveryReader struct {
	ctx      context.Context
	open     Opener
	url      string
	duration time.Duration

	cur      io.ReadCloser
	read     int64
	attempts int
}

func newRecoveryReader(ctx context.Context, open Opener, url string, duration time.Duration) (*recoveryReader, error) {
	rc, err := open(ctx, url, 0)
	if err != nil {
		return nil, err
	}
	return &recoveryReader{ctx: ctx, open: open, url: url, duration: duration, cur: rc}, nil
}

func (r *recoveryReader) Read(p []byte) (int, error) {
	for {
		n, err := r.cur.Read(p)
		r.read += int64(n)
		if n > 0 || !errors.Is(err, io.EOF) {
			return n, err
		}
		if !r.recover() {
			return 0, io.EOF
		}
	}
}

func (r *recoveryReader) recover() bool {
	if r.duration <= 0 || r.ctx.Err() != nil || r.attempts >= maxRecoveryAttempts {
		return false
	}
	pos := position(r.read)
	if pos >= r.duration-recoveryTail {
		return false
	}

	r.attempts++
	log.Warn().Str("url", r.url).Dur("position", pos).Int("attempt", r.attempts).Msg("[Stream] ended prematurely, reopening")

	_ = r.cur.Close()
	rc, err := r.open(r.ctx, r.url, pos)
	if err != nil {
		log.Warn().Err(err).Str("url", r.url).Msg("[Stream] recovery failed")
		r.cur = io.NopCloser(eofReader{})
		return false
	}
	r.cur = rc
	return true
}

func (r *recoveryReader) Close() error {
	return r.cur.Close()
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
