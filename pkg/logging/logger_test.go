package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{" WARN ", WarnLevel, false},
		{"warning", WarnLevel, false},
		{"", InfoLevel, false},
		{"Error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructuredLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("exposure-platform", "test", InfoLevel)
	logger.SetOutput(&buf)

	ctx := WithActor(WithRequestID(context.Background(), "req-1"), "analyst")
	logger.Debug(ctx, "[HIDDEN] below level", nil)
	logger.WithComponent("cache").Warn(ctx, "[CACHE_DELETE_MISSING] Entry not present", Fields{"cache": "worker"})
	logger.Error(ctx, "[SAVE_FAILED] Save failed", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}

	var warn LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &warn); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if warn.Level != "WARN" || warn.RequestID != "req-1" || warn.Actor != "analyst" {
		t.Errorf("entry = %+v", warn)
	}
	if warn.Fields["component"] != "cache" || warn.Fields["cache"] != "worker" {
		t.Errorf("Fields = %v, want component and cache", warn.Fields)
	}

	var failure LogEntry
	if err := json.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if failure.Error != "boom" || failure.File == "" {
		t.Errorf("error entry = %+v, want error text and caller", failure)
	}
}
