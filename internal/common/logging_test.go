package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_FluentAPI(t *testing.T) {
	logger := NewLogger("error")
	logger.Info().Str("key", "value").Msg("test message")
	logger.Warn().Int("count", 42).Msg("warning")
	logger.Error().Err(nil).Msg("error message")
	logger.Debug().Float64("rate", 3.14).Bool("ok", true).Msg("debug")
}

func TestNewLoggerWithOutput_WritesTextLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)
	logger.Info().Str("symbol", "INFY").Msg("quote loaded")

	out := buf.String()
	if !strings.Contains(out, "quote loaded") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestNewSilentLogger_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	_ = NewLoggerWithOutput("info", &buf)
	buf.Reset()

	silent := NewSilentLogger()
	silent.Info().Str("key", "value").Msg("should be discarded")
	silent.Error().Msg("should be discarded")

	if buf.Len() != 0 {
		t.Errorf("silent logger leaked output: %q", buf.String())
	}
}

func TestWithCorrelationId_ReturnsNewLogger(t *testing.T) {
	base := NewSilentLogger()
	tagged := base.WithCorrelationId("req-1")
	if tagged == nil || tagged == base {
		t.Fatal("expected a distinct tagged logger")
	}
	tagged.Info().Msg("tagged")
}
