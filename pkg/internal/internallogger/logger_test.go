package internallogger_test

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	internallogger "github.com/joeydtaylor/sideband/pkg/internal/internallogger"
	"github.com/joeydtaylor/sideband/pkg/internal/types"
)

func TestLevelControl(t *testing.T) {
	logger := internallogger.NewLogger(internallogger.LoggerWithLevel("warn"))
	if got := logger.GetLevel(); got != types.WarnLevel {
		t.Errorf("level %v, want warn", got)
	}
	logger.SetLevel(types.DebugLevel)
	if got := logger.GetLevel(); got != types.DebugLevel {
		t.Errorf("level %v after SetLevel, want debug", got)
	}
}

func TestSinkLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.log")

	logger := internallogger.NewLogger()
	err := logger.AddSink("file-a", types.SinkConfig{
		Type:   types.FileSink,
		Config: map[string]interface{}{"path": path},
	})
	if err != nil {
		t.Fatalf("add sink error: %v", err)
	}
	if err := logger.AddSink("stdout-b", types.SinkConfig{Type: types.StdoutSink}); err != nil {
		t.Fatalf("add stdout sink error: %v", err)
	}

	sinks, err := logger.ListSinks()
	if err != nil {
		t.Fatalf("list sinks error: %v", err)
	}
	sort.Strings(sinks)
	if len(sinks) != 2 || sinks[0] != "file-a" || sinks[1] != "stdout-b" {
		t.Errorf("sinks %v, want [file-a stdout-b]", sinks)
	}

	logger.Info("sink lifecycle check", "component", "test")
	logger.Flush()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink file: %v", err)
	}
	if !strings.Contains(string(data), "sink lifecycle check") {
		t.Errorf("file sink did not receive the entry: %q", data)
	}

	if err := logger.RemoveSink("file-a"); err != nil {
		t.Fatalf("remove sink error: %v", err)
	}
	if err := logger.RemoveSink("file-a"); err == nil {
		t.Error("removing an unknown sink should fail")
	}
	sinks, _ = logger.ListSinks()
	if len(sinks) != 1 {
		t.Errorf("sinks %v after removal, want one", sinks)
	}
}

func TestAddSinkValidation(t *testing.T) {
	logger := internallogger.NewLogger()
	if err := logger.AddSink("bad", types.SinkConfig{Type: types.FileSink}); err == nil {
		t.Error("file sink without a path should fail")
	}
	if err := logger.AddSink("bad", types.SinkConfig{Type: "syslog"}); err == nil {
		t.Error("unsupported sink type should fail")
	}
}

func TestEntriesBelowLevelDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger := internallogger.NewLogger(internallogger.LoggerWithLevel("error"))
	err := logger.AddSink("file", types.SinkConfig{
		Type:   types.FileSink,
		Config: map[string]interface{}{"path": path},
	})
	if err != nil {
		t.Fatalf("add sink error: %v", err)
	}

	logger.Debug("quiet entry")
	logger.Error("loud entry")
	logger.Flush()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink file: %v", err)
	}
	if strings.Contains(string(data), "quiet entry") {
		t.Error("debug entry leaked through error-level logger")
	}
	if !strings.Contains(string(data), "loud entry") {
		t.Error("error entry missing from sink")
	}
}
