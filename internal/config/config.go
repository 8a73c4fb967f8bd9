// Package config resolves the settings of bmpconv from command-line
// overrides, environment variables and defaults, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"

	// DefaultMaxInputSize is the default limit of an input file, after decompression.
	DefaultMaxInputSize = 256 << 20
)

// Config holds the bmpconv configuration.
type Config struct {
	Input        string
	Output       string
	Format       string
	LogLevel     string
	MaxInputSize int64
	Zstd         bool // decompress zstd-framed inputs
	InfoOnly     bool
}

// LoadOptions holds command-line overrides. Empty values are not overrides.
type LoadOptions struct {
	Input    string
	Output   string
	Format   string
	LogLevel string
	InfoOnly bool
}

// LoadWithOverrides loads the configuration, preferring opts over the environment.
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{
		Input:        opts.Input,
		Output:       opts.Output,
		Format:       strings.ToLower(getOverrideOrEnv(opts.Format, "BMPCONV_FORMAT", FormatPNG)),
		LogLevel:     strings.ToLower(getOverrideOrEnv(opts.LogLevel, "BMPCONV_LOG_LEVEL", "info")),
		MaxInputSize: getInt64WithDefault("BMPCONV_MAX_INPUT_SIZE", DefaultMaxInputSize),
		Zstd:         getBoolWithDefault("BMPCONV_ZSTD", true),
		InfoOnly:     opts.InfoOnly,
	}
	if config.Output == "" && config.Input != "" && !config.InfoOnly {
		config.Output = OutputName(config.Input, config.Format)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input file is required")
	}
	if c.Format != FormatPNG && c.Format != FormatTIFF {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max input size must be positive")
	}
	if !c.InfoOnly && c.Output == c.Input {
		return fmt.Errorf("output would overwrite input: %s", c.Input)
	}

	validLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warn":    true,
		"warning": true,
		"error":   true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// OutputName returns input with its image extensions replaced by one for format.
// "a.bmp.zst" becomes "a.png".
func OutputName(input, format string) string {
	name := strings.TrimSuffix(input, ".zst")
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".bmp") || strings.EqualFold(ext, ".dib") {
		name = strings.TrimSuffix(name, ext)
	}
	ext := ".png"
	if format == FormatTIFF {
		ext = ".tiff"
	}
	return name + ext
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getOverrideOrEnv returns the command-line override, the environment value or the default.
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}
