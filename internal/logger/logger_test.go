package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.Info("server started", "port", 8080)

	out := buf.String()
	if !strings.Contains(out, `"msg":"server started"`) {
		t.Errorf("missing message in output: %s", out)
	}
	if !strings.Contains(out, `"port":8080`) {
		t.Errorf("missing attribute in output: %s", out)
	}
}

func TestNewProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("hello")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "console"})

	log.Warn("disk almost full", "free_mb", 12)

	out := buf.String()
	if !strings.Contains(out, "WRN") {
		t.Errorf("missing level label: %s", out)
	}
	if !strings.Contains(out, "disk almost full") {
		t.Errorf("missing message: %s", out)
	}
	if !strings.Contains(out, "free_mb=12") {
		t.Errorf("missing attribute: %s", out)
	}
}

func TestConsoleLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "console", Level: slog.LevelWarn})

	log.Debug("noise")
	log.Info("more noise")

	if buf.Len() != 0 {
		t.Errorf("expected filtered output, got: %s", buf.String())
	}
}

func TestConsoleWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "console"})

	log.With("request_id", "req-1").Info("handled")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("missing inherited attribute: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
