package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "debug", Format: "json", Output: &buf})
	l.Info().Str("txn_id", "txn_1").Msg("txn committed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}

	if line["message"] != "txn committed" || line["txn_id"] != "txn_1" || line["service"] != "econledger" {
		t.Fatalf("unexpected fields: %v", line)
	}

	if _, ok := line["caller"]; !ok {
		t.Fatalf("expected caller at debug level, got %v", line)
	}
}

func TestNewOmitsCallerAboveDebug(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "info", Output: &buf})
	l.Info().Msg("chain verified")

	if strings.Contains(buf.String(), `"caller"`) {
		t.Fatalf("expected no caller at info level, got %q", buf.String())
	}
}

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "info", Format: "console", Output: &buf})
	l.Info().Msg("hello")

	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected console output, got %q", buf.String())
	}

	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(Config{Level: "warn", Output: &buf})
	l.Info().Msg("dropped")

	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	l.Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestSetGlobal(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	var buf bytes.Buffer
	SetGlobal(New(Config{Output: &buf}))

	log.Info().Msg("global")

	if !strings.Contains(buf.String(), "global") {
		t.Fatalf("expected global logger to write to buffer, got %q", buf.String())
	}
}
