// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs a console logger at the given level as the global logger and
// returns it. Unknown levels fall back to info.
func Setup(level string) zerolog.Logger {
	return setup(os.Stdout, level)
}

func setup(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(lvl)

	zerolog.SetGlobalLevel(lvl)
	log.Logger = logger
	return logger
}
