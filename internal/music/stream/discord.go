package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"layeh.com/gopus"
)

// encoder is the subset of *gopus.Encoder used here.
type encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

func newOpusEncoder() (encoder, error) {
	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return enc, nil
}

// pump reads PCM frames from src, encodes them and sends them to out until the
// source ends or ctx is cancelled. wait blocks while playback is paused.
func pump(ctx context.Context, src io.Reader, enc encoder, out chan<- []byte, wait func(context.Context) error) error {
	pcmBuf := make([]byte, frameBytes)
	intBuf := make([]int16, frameSize*channels)

	for {
		if err := wait(ctx); err != nil {
			return err
		}

		n, err := io.ReadFull(src, pcmBuf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// pad the last partial frame with silence
			clear(pcmBuf[n:])
		} else if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, encErr := enc.Encode(intBuf, frameSize, frameBytes)
		if encErr != nil {
			return fmt.Errorf("encode error: %w", encErr)
		}

		select {
		case out <- opus:
		case <-ctx.Done():
			return ctx.Err()
		}

		if err != nil {
			return nil
		}
	}
}
