package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestSink_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, nil, true)
	logger := slog.New(sink)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] in output, got: %s", output)
	}
	if !strings.Contains(output, "- test message") {
		t.Errorf("expected message text in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value tail in output, got: %s", output)
	}
}

func TestSink_DebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, nil, false)
	logger := slog.New(sink)

	logger.Debug("debug message")
	if buf.Len() != 0 {
		t.Errorf("expected debug message to be suppressed, got: %s", buf.String())
	}
}

func TestSink_DebugEmittedWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, nil, true)
	logger := slog.New(sink)

	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "[DEBUG]") {
		t.Errorf("expected [DEBUG] in output, got: %s", buf.String())
	}
}

func TestSink_LevelLabels(t *testing.T) {
	tests := []struct {
		level slog.Level
		label string
	}{
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
	}
	for _, tt := range tests {
		if got := levelString(tt.level); got != tt.label {
			t.Errorf("levelString(%v) = %q, want %q", tt.level, got, tt.label)
		}
	}
}

func TestSink_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, nil, true)
	logger := slog.New(sink).With("pid", 1234)

	logger.Info("child started")
	output := buf.String()
	if !strings.Contains(output, "pid=1234") {
		t.Errorf("expected pid=1234 in output, got: %s", output)
	}
}

func TestInit_StderrByDefault(t *testing.T) {
	sink, err := Init("", false)
	if err != nil {
		t.Fatalf("Init(\"\") returned error: %v", err)
	}
	if sink.file != nil {
		t.Error("expected nil file for stderr-only sink")
	}

	sink, err = Init("stderr", false)
	if err != nil {
		t.Fatalf("Init(\"stderr\") returned error: %v", err)
	}
	if sink.file != nil {
		t.Error("expected nil file for literal \"stderr\" path")
	}
}

func TestInit_OpensFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sandbox.log"

	sink, err := Init(path, false)
	if err != nil {
		t.Fatalf("Init(%q) returned error: %v", path, err)
	}
	defer sink.file.Close()

	logger := slog.New(sink)
	logger.Info("hello from the sandbox")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the sandbox") {
		t.Errorf("expected log file to contain message, got: %s", data)
	}
}

func TestSink_FallsBackToStderrAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sandbox.log"

	sink, err := Init(path, false)
	if err != nil {
		t.Fatalf("Init(%q) returned error: %v", path, err)
	}
	sink.file.Close() // force the next write to fail

	var fallback bytes.Buffer
	sink.fallback = &fallback

	logger := slog.New(sink)
	logger.Info("should go to fallback")

	if !strings.Contains(fallback.String(), "should go to fallback") {
		t.Errorf("expected fallback to receive message, got: %s", fallback.String())
	}
	if sink.file != nil {
		t.Error("expected sink to clear file reference after write failure")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithOperationAndWithPID_AttachAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSink(&buf, nil, true))

	scoped := WithPID(WithOperation(logger, "run"), 4242)
	scoped.Info("scoped message")

	output := buf.String()
	if !strings.Contains(output, "operation=run") {
		t.Errorf("expected operation=run in output, got: %s", output)
	}
	if !strings.Contains(output, "pid=4242") {
		t.Errorf("expected pid=4242 in output, got: %s", output)
	}
}

func TestWithPath_AttachesAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSink(&buf, nil, true))

	WithPath(logger, "/tmp/sandbox.log").Info("redirect opened")
	if !strings.Contains(buf.String(), "path=/tmp/sandbox.log") {
		t.Errorf("expected path attr in output, got: %s", buf.String())
	}
}

func TestContextWithLoggerAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSink(&buf, nil, true))

	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the logger attached by ContextWithLogger")
	}

	if got := FromContext(context.Background()); got != Default() {
		t.Error("FromContext should fall back to Default() when ctx carries no logger")
	}
}

func TestDefaultAndSetDefault(t *testing.T) {
	var buf bytes.Buffer
	newLogger := slog.New(NewSink(&buf, nil, true))

	oldDefault := Default()
	SetDefault(newLogger)
	defer SetDefault(oldDefault)

	if Default() != newLogger {
		t.Error("SetDefault did not change the default logger")
	}

	Info("via package helper")
	if !strings.Contains(buf.String(), "via package helper") {
		t.Errorf("expected Info() helper to use default logger, got: %s", buf.String())
	}
}
