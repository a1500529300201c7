package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger on stderr. Stdout stays free for protocol
// traffic such as MCP over stdio.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stderr).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
}
