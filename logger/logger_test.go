package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/relloyd/snappipe/logger"
)

func TestLoggerServiceField(t *testing.T) {
	log := logger.NewLogger("test-service", "debug", false)
	out := bytes.NewBufferString("")
	log.SetOutput(out)
	log.Info("Testing")
	if !strings.Contains(out.String(), "service=test-service") {
		t.Fatal("expected service field in log output, got: ", out.String())
	}
	if !strings.Contains(out.String(), "Testing") {
		t.Fatal("expected message in log output, got: ", out.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	log := logger.NewLogger("test-service", "info", false)
	out := bytes.NewBufferString("")
	log.SetOutput(out)
	log.Debug("hidden")
	if strings.Contains(out.String(), "hidden") {
		t.Fatal("debug message should be suppressed at info level")
	}
	log.Warn("shown")
	if !strings.Contains(out.String(), "level=warning") {
		t.Fatal("expected warning level in log output, got: ", out.String())
	}
}
