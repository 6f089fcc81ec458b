package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(&buf, "warn", zerolog.InfoLevel, false)
	log.Info().Msg("hidden")
	log.Warn().Str("gameId", "g1").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"gameId":"g1"`) || !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestSetupFallback(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Setup(&buf, "loud", zerolog.ErrorLevel, true)
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("level = %s, want error", zerolog.GlobalLevel())
	}
}
