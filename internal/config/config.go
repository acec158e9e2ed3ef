// Package config handles hanzipack CLI configuration loading.
package config

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zlib"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Compression CompressionConfig `yaml:"compression"`
	Tokens      TokensConfig      `yaml:"tokens"`
}

// CompressionConfig holds zlib settings for the encode direction.
type CompressionConfig struct {
	// Level is the zlib compression level, 1 (fastest) to 9 (best).
	Level int `yaml:"level"`
}

// TokensConfig holds settings for the stats command.
type TokensConfig struct {
	// Encoding is the tiktoken encoding used for token counts,
	// e.g. "cl100k_base".
	Encoding string `yaml:"encoding"`
}

// Default returns the configuration used when no file is given:
// maximum compression, GPT-4 token counting.
func Default() Config {
	return Config{
		Compression: CompressionConfig{Level: zlib.BestCompression},
		Tokens:      TokensConfig{Encoding: "cl100k_base"},
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	//nolint:gosec // G304: File path comes from user input, which is expected for config loading
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Compression.Level < zlib.BestSpeed || c.Compression.Level > zlib.BestCompression {
		return fmt.Errorf("compression level %d out of range [%d, %d]",
			c.Compression.Level, zlib.BestSpeed, zlib.BestCompression)
	}
	if c.Tokens.Encoding == "" {
		c.Tokens.Encoding = "cl100k_base"
	}
	return nil
}
