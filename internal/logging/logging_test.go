package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("lookup done", "records", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", lines[0], err)
	}
	if rec["msg"] != "lookup done" || rec["level"] != "INFO" {
		t.Errorf("record = %v", rec)
	}
	if rec["records"] != float64(3) {
		t.Errorf("records = %v, want 3", rec["records"])
	}
}

func TestNew_Charm(t *testing.T) {
	for _, format := range []string{"text", "logfmt"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New("warn", format, &buf)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			logger.Info("hidden")
			logger.Warn("retrying", "attempt", 2)

			out := buf.String()
			if strings.Contains(out, "hidden") {
				t.Errorf("info message logged at warn level: %q", out)
			}
			if !strings.Contains(out, "retrying") || !strings.Contains(out, "attempt=2") {
				t.Errorf("output = %q, want message and attempt=2", out)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New("loud", "text", &buf); err == nil {
		t.Error("New() should reject unknown level")
	}
	if _, err := New("info", "xml", &buf); err == nil {
		t.Error("New() should reject unknown format")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled")
	}
}
