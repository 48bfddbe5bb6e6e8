package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]LogLevel{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"warning": Warn,
		"Error":   Error,
	} {
		got, err := ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("agentfs", Warn, &buf)

	logger.Info("hidden %d", 1)
	logger.Warn("visible %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "visible 2") || !strings.Contains(out, "[agentfs]") {
		t.Errorf("Expected warn message with service name, got %q", out)
	}
}

func TestLogger_NamedJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("agentfs", Debug, &buf)
	logger.JSON = true

	logger.Named("router").Debug("mounted %s", "/memory/")

	out := buf.String()
	if !strings.Contains(out, `"service":"agentfs/router"`) || !strings.Contains(out, `"message":"mounted /memory/"`) {
		t.Errorf("Unexpected json output %q", out)
	}
}

func TestLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "agentfs.log")

	logger := NewLogger("agentfs", Info, file, true)
	logger.Named("local").Info("created '%s'", "/a.txt")

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "[agentfs/local] created '/a.txt'") {
		t.Errorf("Unexpected log file content %q", content)
	}
	if strings.Contains(string(content), "\033[") {
		t.Errorf("Expected no color codes in file output")
	}
}
