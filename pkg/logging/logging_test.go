package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}

	if l := SetupWithWriter("chatty", &buf); l.GetLevel() != zerolog.InfoLevel {
		t.Errorf("unknown level gave %s", l.GetLevel())
	}
	if l := SetupWithWriter("", &buf); l.GetLevel() != zerolog.InfoLevel {
		t.Errorf("empty level gave %s", l.GetLevel())
	}
}
