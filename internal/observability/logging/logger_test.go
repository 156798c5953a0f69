package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.input); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewJSONLoggerRespectsLevel(t *testing.T) {
	logger := NewJSONLogger("docanalyst-test", "warn")
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatalf("expected info to be suppressed at warn level")
	}
	if !logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Fatalf("expected warn to be enabled")
	}
}
