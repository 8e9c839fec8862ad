// Package eventlog keeps a human-readable per-guild log of what the player did:
// tracks added and played, skips, errors and stops. Each guild writes to its
// own rotating file under <dir>/<guildID>/music.log; startup lines go to
// <dir>/general/music.log.
package eventlog

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/pkg/util"
)

const (
	fileName   = "music.log"
	generalDir = "general"
)

// Entry kinds.
const (
	EntryError   = "ERROR"
	EntrySkip    = "SKIP"
	EntryPlay    = "PLAY"
	EntryStop    = "STOP"
	EntryStartup = "STARTUP"
	EntryVoice   = "VC"
)

// Logger writes guild events. The zero value and a disabled Logger drop
// everything.
type Logger struct {
	dir     string
	enabled bool

	mu      sync.Mutex
	streams map[string]stream
}

type stream struct {
	log zerolog.Logger
	out io.Closer
}

// New returns a Logger rooted at dir.
func New(dir string, enabled bool) *Logger {
	return &Logger{
		dir:     dir,
		enabled: enabled,
		streams: make(map[string]stream),
	}
}

// Enabled reports whether entries are written.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Startup records that the bot logged in as user.
func (l *Logger) Startup(user string) {
	l.write(generalDir, EntryStartup, "Bot is logged as "+user)
}

// Error records a failure for the guild.
func (l *Logger) Error(guildID string, err error) {
	if err == nil {
		return
	}
	l.write(guildID, EntryError, err.Error())
}

// Skip records a skipped track.
func (l *Logger) Skip(guildID, channel string) {
	l.write(guildID, EntrySkip, "Skipped track in VC: "+channel)
}

// Added records a track appended to the queue.
func (l *Logger) Added(guildID string, info *sources.TrackInfo) {
	if info == nil {
		return
	}
	l.write(guildID, EntryPlay, "Added "+info.Title+" to queue with duration of "+duration(info))
}

// Playing records a track starting in channel.
func (l *Logger) Playing(guildID string, info *sources.TrackInfo, channel string) {
	if info == nil {
		return
	}
	l.write(guildID, EntryPlay, "Playing "+info.Title+" in VC: "+channel)
}

// Finished records the end of playback in channel.
func (l *Logger) Finished(guildID, channel string) {
	l.write(guildID, EntryStop, "Finished playing in VC: "+channel)
}

// VoiceMove records a member joining, leaving or switching voice channels.
func (l *Logger) VoiceMove(guildID, user, before, after string) {
	switch {
	case before == after:
		return
	case before == "":
		l.write(guildID, EntryVoice, "User "+user+" joined VC "+after)
	case after == "":
		l.write(guildID, EntryVoice, "User "+user+" left VC "+before)
	default:
		l.write(guildID, EntryVoice, "User "+user+" switched VC from "+before+" to "+after)
	}
}

// Close flushes and closes every open file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var first error
	for key, s := range l.streams {
		if err := s.out.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.streams, key)
	}
	return first
}

func (l *Logger) write(key, entry, msg string) {
	if !l.Enabled() || key == "" {
		return
	}
	lg := l.stream(key)
	lg.Info().Str("entry", entry).Msg(msg)
}

func (l *Logger) stream(key string) *zerolog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.streams[key]; ok {
		return &s.log
	}

	out := &lumberjack.Logger{
		Filename:   filepath.Join(l.dir, key, fileName),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
	}
	s := stream{
		log: zerolog.New(out).With().Timestamp().Logger(),
		out: out,
	}
	l.streams[key] = s
	return &s.log
}

func duration(info *sources.TrackInfo) string {
	if info.IsLive {
		return "Live"
	}
	return util.FormatDuration(info.Duration)
}
