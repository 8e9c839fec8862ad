// Package stream decodes a media url with ffmpeg into 48kHz stereo PCM,
// encodes it to Opus frames and pushes them to a voice connection.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz

	frameBytes  = frameSize * channels * 2
	bytesPerSec = sampleRate * channels * 2
)

// Opener starts a PCM stream of url at the given offset.
type Opener func(ctx context.Context, url string, seek time.Duration) (io.ReadCloser, error)

// FFmpeg returns an Opener that runs the ffmpeg binary at path.
func FFmpeg(path string) Opener {
	if path == "" {
		path = "ffmpeg"
	}
	return func(ctx context.Context, url string, seek time.Duration) (io.ReadCloser, error) {
		cmd := exec.CommandContext(ctx, path, ffmpegArgs(url, seek)...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe error: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("ffmpeg start error: %w", err)
		}
		return &process{ReadCloser: stdout, cmd: cmd}, nil
	}
}

func ffmpegArgs(url string, seek time.Duration) []string {
	var args []string
	if seek > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", seek.Seconds()))
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

type process struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *process) Close() error {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.ReadCloser.Close()
	_ = p.cmd.Wait()
	if errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

// position converts a PCM byte count to playback time.
func position(n int64) time.Duration {
	return time.Duration(n) * time.Second / bytesPerSec
}
