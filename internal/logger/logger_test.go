package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", FormatJSON)

	l.Debug().Str("editable", "e1").Msg("state derived")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["editable"] != "e1" || entry["message"] != "state derived" {
		t.Errorf("Unexpected log entry: %v", entry)
	}
	for _, key := range []string{"pid", "go_version", "git_revision", "time", "caller"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("Expected %q field in log entry", key)
		}
	}
}

func TestNewWithWriterLevels(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&buf, tc.level, FormatJSON)
			if l.GetLevel() != tc.expected {
				t.Errorf("Expected level %s, got %s", tc.expected, l.GetLevel())
			}
		})
	}
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", FormatConsole)
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected console output to contain message, got %q", buf.String())
	}
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected human readable output, got %q", buf.String())
	}
}
