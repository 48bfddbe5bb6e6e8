package agentfs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwantia/agentfs"
	"github.com/mwantia/agentfs/data"
	"github.com/mwantia/agentfs/log"
)

func TestParseBackendAddress(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		address string
		name    string
		err     error
	}{
		{":ephemeral:", "ephemeral", nil},
		{":memory:", "store", nil},
		{"local://" + dir, "local", nil},
		{"direct://" + dir + "?virtual=true&max_file_size_mb=1", "local", nil},
		{"badger://?in_memory=true&namespace=tenant,files", "store", nil},
		{"sqlite://:memory:", "store", nil},
		{"sqlite://" + filepath.Join(dir, "files.db") + "?namespace=a", "store", nil},
		{"ephemeral", "", agentfs.ErrMalformedBackendAddress},
		{"local://", "", agentfs.ErrMalformedBackendAddress},
		{"local://" + dir + "?virtual=maybe", "", agentfs.ErrMalformedBackendAddress},
		{"badger://", "", agentfs.ErrMalformedBackendAddress},
		{"s3://localhost:9000", "", agentfs.ErrMalformedBackendAddress},
		{"ftp://example.com", "", agentfs.ErrUnknownBackendProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(tst *testing.T) {
			be, err := agentfs.ParseBackendAddress(tst.Context(), tt.address, log.Discard())
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					tst.Fatalf("Expected %v, got %v", tt.err, err)
				}
				return
			}

			if err != nil {
				tst.Fatalf("Failed to parse address: %v", err)
			}
			defer be.Close(tst.Context())

			if be.Name() != tt.name {
				tst.Errorf("Expected backend '%s', got '%s'", tt.name, be.Name())
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentfs.yaml")

	content := strings.Join([]string{
		"log:",
		"  level: debug",
		"  json: true",
		"default: \":memory:\"",
		"mounts:",
		"  - path: /work/",
		"    address: local://" + dir + "?virtual=true",
		"  - path: /archive/",
		"    address: \":ephemeral:\"",
		"    read_only: true",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("AGENTFS_LOG_LEVEL", "warn")

	cfg, err := agentfs.LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Expected environment to override level, got '%s'", cfg.Log.Level)
	}
	if !cfg.Log.JSON {
		t.Errorf("Expected json logging from file")
	}
	if cfg.Default != ":memory:" {
		t.Errorf("Expected default ':memory:', got '%s'", cfg.Default)
	}
	if len(cfg.Mounts) != 2 || !cfg.Mounts[1].ReadOnly {
		t.Fatalf("Unexpected mounts: %+v", cfg.Mounts)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := agentfs.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Default != agentfs.DefaultAddress {
		t.Errorf("Expected default address, got '%s'", cfg.Default)
	}

	if _, err := agentfs.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestNewFromConfig(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	cfg := agentfs.DefaultConfig()
	cfg.Mounts = []agentfs.MountConfig{
		{Path: "/memory/", Address: ":memory:"},
		{Path: "/work", Address: "local://" + dir + "?virtual=true"},
		{Path: "/archive/", Address: ":ephemeral:", ReadOnly: true, DisableNesting: true},
	}

	fs, err := agentfs.NewFromConfig(ctx, cfg, agentfs.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("Failed to create filesystem: %v", err)
	}
	defer fs.Close(ctx)

	for _, path := range []string{"/notes.txt", "/memory/notes.txt", "/work/src/main.go"} {
		if _, err := fs.Write(ctx, path, "package main"); err != nil {
			t.Fatalf("Failed to write '%s': %v", path, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "src", "main.go")); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	if _, err := fs.Write(ctx, "/archive/x.txt", "x"); !errors.Is(err, data.ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly, got %v", err)
	}

	infos, err := fs.LsInfo(ctx, "/")
	if err != nil {
		t.Fatalf("LsInfo failed: %v", err)
	}

	listed := make([]string, 0, len(infos))
	for _, info := range infos {
		listed = append(listed, info.Path)
	}
	if got := strings.Join(listed, ","); got != "/archive/,/memory/,/notes.txt,/work/" {
		t.Errorf("Unexpected listing: %s", got)
	}

	matches, err := fs.Grep(ctx, "package", "/", "*.go")
	if err != nil {
		t.Fatalf("Grep failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "/work/src/main.go" {
		t.Errorf("Unexpected matches: %+v", matches)
	}
}

func TestNewFromConfig_InvalidMount(t *testing.T) {
	cfg := agentfs.DefaultConfig()
	cfg.Mounts = []agentfs.MountConfig{
		{Path: "/bad/", Address: "unknown://"},
	}

	_, err := agentfs.NewFromConfig(t.Context(), cfg, agentfs.WithLogger(log.Discard()))
	if !errors.Is(err, agentfs.ErrUnknownBackendProtocol) {
		t.Fatalf("Expected ErrUnknownBackendProtocol, got %v", err)
	}

	cfg = agentfs.DefaultConfig()
	cfg.Log.Level = "loud"
	fs, err := agentfs.New(t.Context(), agentfs.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("Expected default filesystem: %v", err)
	}
	fs.Close(t.Context())

	if _, err := agentfs.NewFromConfig(t.Context(), cfg); err == nil {
		t.Errorf("Expected error for invalid log level")
	}
}
