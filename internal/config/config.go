// Package config holds the graphc configuration file format.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file graphc looks for in the working
// directory when --config is not given.
const DefaultFile = "graphc.yaml"

// Config is the graphc configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Translate TranslateConfig `yaml:"translate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

type TranslateConfig struct {
	OutputDir   string `yaml:"output_dir,omitempty"` // empty writes to stdout
	Signature   bool   `yaml:"signature"`
	Seed        uint64 `yaml:"seed"`
	Parallelism int    `yaml:"parallelism"` // 0 uses every CPU
	FailFast    bool   `yaml:"fail_fast"`
	Trace       bool   `yaml:"trace"`
	DebugTrace  string `yaml:"debug_trace,omitempty"` // "text" or "json" node events on stderr
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Translate: TranslateConfig{
			Signature: true,
		},
	}
}

// Load reads the file at path over the defaults. A missing file is an error
// unless optional is set, in which case the defaults are returned.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML into cfg, keeping the values of keys the document does
// not set. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse the config: %w", err)
	}
	return cfg.Validate()
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if err := ValidateDebugTrace(c.Translate.DebugTrace); err != nil {
		return err
	}
	if c.Translate.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Translate.Parallelism)
	}
	return nil
}

// ValidateDebugTrace checks a debug trace format. Empty turns tracing off.
func ValidateDebugTrace(format string) error {
	if !slices.Contains([]string{"", "text", "json"}, format) {
		return fmt.Errorf("unknown debug trace format %q", format)
	}
	return nil
}

// Write stores cfg as YAML.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
