package http

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Defaults used by DefaultConfig.
const (
	DefaultMemoryLimit   = 2 << 20
	DefaultCopyChunkSize = 1 << 20
)

// Config configures a Factory.
type Config struct {
	// Directory for temp streams that outgrow MemoryLimit.
	// os.TempDir() if empty.
	TempDir string `yaml:"tempDir"`
	// Bytes a temp stream keeps in memory before spilling to a file.
	// Zero spills on the first write.
	MemoryLimit int64 `yaml:"memoryLimit"`
	// Chunk size used by UploadedFile.MoveTo.
	CopyChunkSize int `yaml:"copyChunkSize"`
	// Protocol version for messages created with version "".
	ProtocolVersion string `yaml:"protocolVersion"`
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration used by NewFactory(nil).
func DefaultConfig() Config {
	return Config{
		TempDir:         os.TempDir(),
		MemoryLimit:     DefaultMemoryLimit,
		CopyChunkSize:   DefaultCopyChunkSize,
		ProtocolVersion: DefaultProtocolVersion,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, resourceError("LoadConfig", err, "unable to read %q", filename)
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, invalidInput("LoadConfig", "unable to parse %q: %v", filename, err)
	}
	return config, config.Validate()
}

// Validate checks sizes and the protocol version.
func (c Config) Validate() error {
	if c.MemoryLimit < 0 {
		return invalidInput("Config", "memoryLimit must not be negative, got %d", c.MemoryLimit)
	}
	if c.CopyChunkSize <= 0 {
		return invalidInput("Config", "copyChunkSize must be positive, got %d", c.CopyChunkSize)
	}
	if c.ProtocolVersion != "" && !validProtocolVersion(c.ProtocolVersion) {
		return invalidInput("Config", "invalid protocol version %q", c.ProtocolVersion)
	}
	return nil
}

func (c Config) logger() zerolog.Logger {
	if c.Logger != nil {
		return *c.Logger
	}
	return log.Logger
}
