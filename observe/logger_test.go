package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(Logger)
		want  string // empty means filtered
	}{
		{"info", func(l Logger) { l.Info(context.Background(), "m") }, "info"},
		{"info", func(l Logger) { l.Debug(context.Background(), "m") }, ""},
		{"debug", func(l Logger) { l.Debug(context.Background(), "m") }, "debug"},
		{"warn", func(l Logger) { l.Info(context.Background(), "m") }, ""},
		{"warn", func(l Logger) { l.Warn(context.Background(), "m") }, "warn"},
		{"error", func(l Logger) { l.Warn(context.Background(), "m") }, ""},
		{"error", func(l Logger) { l.Error(context.Background(), "m") }, "error"},
		{"", func(l Logger) { l.Info(context.Background(), "m") }, "info"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.log(NewLoggerWithWriter(tt.level, &buf))

		entries := decodeLines(t, &buf)
		if tt.want == "" {
			if len(entries) != 0 {
				t.Errorf("level %q: expected line to be filtered, got %v", tt.level, entries)
			}
			continue
		}
		if len(entries) != 1 || entries[0]["level"] != tt.want {
			t.Errorf("level %q: got %v, want one %s line", tt.level, entries, tt.want)
		}
	}
}

func TestLogger_FieldsAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "summarize",
		F("input_text", "very private text"),
		F("prompt", "Please summarize..."),
		F("token", "abc"),
		F("attempt", 2),
		Err(errors.New("boom")),
	)

	e := decodeLines(t, &buf)[0]
	for _, key := range []string{"input_text", "prompt", "token"} {
		if e[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", key, e[key])
		}
	}
	if e["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", e["attempt"])
	}
	if e["error"] != "boom" {
		t.Errorf("error = %v, want boom", e["error"])
	}
	if e["message"] != "summarize" {
		t.Errorf("message = %v, want summarize", e["message"])
	}
	if _, ok := e["time"]; !ok {
		t.Error("missing time field")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)

	scoped := base.With(F("component", "summarize"), F("secret", "s3cr3t"))
	scoped.Info(context.Background(), "scoped")
	base.Info(context.Background(), "base")

	entries := decodeLines(t, &buf)
	if entries[0]["component"] != "summarize" {
		t.Errorf("component = %v, want summarize", entries[0]["component"])
	}
	if entries[0]["secret"] != "[REDACTED]" {
		t.Errorf("secret = %v, want [REDACTED]", entries[0]["secret"])
	}
	if _, ok := entries[1]["component"]; ok {
		t.Error("With must not modify the parent logger")
	}
}

func TestLogger_RequestMeta(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	ctx := WithRequest(context.Background(), RequestMeta{RequestID: "req-1", TenantID: "tenant1"})
	logger.Info(ctx, "with meta")
	logger.Info(context.Background(), "without meta")

	entries := decodeLines(t, &buf)
	if entries[0]["request.id"] != "req-1" || entries[0]["tenant.id"] != "tenant1" {
		t.Errorf("entry = %v, want request.id and tenant.id", entries[0])
	}
	if _, ok := entries[1]["request.id"]; ok {
		t.Error("request.id should be absent without meta")
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "x")
	if l.With(F("a", 1)) == nil {
		t.Fatal("With should return non-nil logger")
	}
}
