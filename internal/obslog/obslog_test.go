package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRestores(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	L().Info("xo_test_event", zap.String("session_id", "s1"))
	restore()
	L().Info("dropped")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	e := logs.All()[0]
	if e.Message != "xo_test_event" || e.ContextMap()["session_id"] != "s1" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "xo.log")
	t.Cleanup(Replace(nil))
	if err := Init(Options{Level: "debug", Format: "json", File: true, FilePath: path, Component: "xo-test"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Debug("xo_debug_line")
	Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "xo_debug_line") || !strings.Contains(string(raw), `"component":"xo-test"`) {
		t.Fatalf("unexpected log content: %s", raw)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{"": zapcore.InfoLevel, "DEBUG": zapcore.DebugLevel, "warning": zapcore.WarnLevel, "bogus": zapcore.InfoLevel}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v want %v", in, got, want)
		}
	}
}
