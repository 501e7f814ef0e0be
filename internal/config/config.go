// Package config provides supervisor configuration loading.
//
// Settings resolve in three layers: built-in defaults, an optional JSON
// config file, then environment variables. Later layers win.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Environment variables honored by FromEnv.
const (
	EnvBinary      = "REMOTION_BINARY"
	EnvBinariesDir = "REMOTION_BINARIES_DIR"
	EnvConcurrency = "REMOTION_CONCURRENCY"
	EnvVerbose     = "REMOTION_VERBOSE"
)

// Config holds every knob the supervisor exposes.
type Config struct {
	// BinaryPath locates the compositor executable. An explicit path wins
	// over BinariesDirectory.
	BinaryPath string

	// BinariesDirectory holds the compositor executable under its
	// well-known name. Used when BinaryPath is empty.
	BinariesDirectory string

	// Concurrency is the child's render lane count. Zero lets the
	// supervisor pick one lane per CPU.
	Concurrency int

	// FrameCacheItems overrides the free-memory sizing heuristic when
	// non-zero.
	FrameCacheItems int

	// Verbose turns on diagnostic frames and debug logging.
	Verbose bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{}
}

// LoadFile merges settings from a JSON config file into cfg. A missing file
// is not an error; the input is returned unchanged.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return cfg, fmt.Errorf("config %s: not valid JSON", path)
	}

	if v := gjson.GetBytes(data, "binary"); v.Exists() {
		cfg.BinaryPath = v.String()
	}
	if v := gjson.GetBytes(data, "binaries_directory"); v.Exists() {
		cfg.BinariesDirectory = v.String()
	}
	if v := gjson.GetBytes(data, "concurrency"); v.Exists() {
		cfg.Concurrency = int(v.Int())
	}
	if v := gjson.GetBytes(data, "frame_cache_items"); v.Exists() {
		cfg.FrameCacheItems = int(v.Int())
	}
	if v := gjson.GetBytes(data, "verbose"); v.Exists() {
		cfg.Verbose = v.Bool()
	}
	return cfg, nil
}

// FromEnv merges environment overrides into cfg.
func FromEnv(cfg Config) Config {
	if v := os.Getenv(EnvBinary); v != "" {
		cfg.BinaryPath = v
	}
	if v := os.Getenv(EnvBinariesDir); v != "" {
		cfg.BinariesDirectory = v
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Verbose = v != "0" && v != "false"
	}
	return cfg
}

// WriteFile materializes cfg as a JSON config file.
func WriteFile(cfg Config, path string) error {
	data := []byte("{}")
	var err error
	if data, err = sjson.SetBytes(data, "binary", cfg.BinaryPath); err != nil {
		return err
	}
	if data, err = sjson.SetBytes(data, "binaries_directory", cfg.BinariesDirectory); err != nil {
		return err
	}
	if data, err = sjson.SetBytes(data, "concurrency", cfg.Concurrency); err != nil {
		return err
	}
	if data, err = sjson.SetBytes(data, "frame_cache_items", cfg.FrameCacheItems); err != nil {
		return err
	}
	if data, err = sjson.SetBytes(data, "verbose", cfg.Verbose); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
