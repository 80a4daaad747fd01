package http

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "httpmsg.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.TempDir != os.TempDir() {
		t.Errorf("TempDir = %q, want %q", c.TempDir, os.TempDir())
	}
	if c.MemoryLimit != 2<<20 || c.CopyChunkSize != 1<<20 || c.ProtocolVersion != "1.1" {
		t.Errorf("DefaultConfig() = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
tempDir: /var/tmp/uploads
memoryLimit: 1024
protocolVersion: "2"
`)

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if c.TempDir != "/var/tmp/uploads" || c.MemoryLimit != 1024 || c.ProtocolVersion != "2" {
		t.Errorf("LoadConfig() = %+v", c)
	}
	// Unset keys keep their defaults.
	if c.CopyChunkSize != DefaultCopyChunkSize {
		t.Errorf("CopyChunkSize = %d, want default", c.CopyChunkSize)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.yaml"), ErrResource},
		{"bad yaml", writeConfig(t, "memoryLimit: [1, 2"), ErrInvalidInput},
		{"negative limit", writeConfig(t, "memoryLimit: -1"), ErrInvalidInput},
		{"zero chunk", writeConfig(t, "copyChunkSize: 0"), ErrInvalidInput},
		{"bad version", writeConfig(t, "protocolVersion: HTTP/1.1"), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
