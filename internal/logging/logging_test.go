package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer closeFn()

	logger.WithField("task_id", "t1").Debug("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["task_id"] != "t1" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "thetask.log")
	logger, closeFn, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("default level = %s", logger.GetLevel())
	}
	logger.Info("to file")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "to file") {
		t.Fatalf("log file missing entry: %q", raw)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected level error")
	}
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
}
