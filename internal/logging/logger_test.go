package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.With(slog.String(FieldRunID, "run-1")).Info("transcode started", slog.Int("jobs", 3))
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if record["msg"] != "transcode started" || record[FieldRunID] != "run-1" || record["jobs"] != float64(3) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf, Color: &noColor})
	if err != nil {
		t.Fatal(err)
	}

	logger.WithGroup("job").With(slog.String(FieldSource, "/music/a b.flac")).Warn("transcode failed",
		slog.String(FieldStage, "encode"),
		slog.Duration("elapsed", 1500*time.Millisecond),
	)

	line := buf.String()
	for _, want := range []string{
		"WARN ",
		"transcode failed",
		`job.source="/music/a b.flac"`,
		"job.stage=encode",
		"job.elapsed=1.5s",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("console line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Error("colour codes written with colour disabled")
	}
}

func TestConsoleLoggerColour(t *testing.T) {
	var buf bytes.Buffer
	color := true
	logger, err := New(Options{Output: &buf, Color: &color})
	if err != nil {
		t.Fatal(err)
	}
	logger.Error("boom")
	if !strings.Contains(buf.String(), ansiRed+"ERROR"+ansiReset) {
		t.Fatalf("expected coloured level, got %q", buf.String())
	}
}

func TestIsTerminalNonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatal("a buffer is not a terminal")
	}
}
