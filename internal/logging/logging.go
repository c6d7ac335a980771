// Package logging provides structured logging setup for staylist.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global zerolog logger.
// Dev mode uses a human-readable console writer at debug; prod uses JSON at info.
func Setup(devMode bool) {
	log.Logger = New(os.Stdout, devMode)
}

// New builds a logger writing to w with the same rules as Setup.
func New(w io.Writer, devMode bool) zerolog.Logger {
	if devMode {
		return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
