// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level from level (falling back to fallback when
// it does not parse) and points the global logger at w. Interactive
// front-ends pass console=true for human-readable output on stderr.
func Setup(w io.Writer, level string, fallback zerolog.Level, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = fallback
	}
	zerolog.SetGlobalLevel(lvl)
	if w == nil {
		w = os.Stderr
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
