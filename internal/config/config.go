// Package config holds runtime configuration: defaults, optional YAML file
// overlay, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// MaxWorkers caps --workers; each worker may hold one ffmpeg process.
const MaxWorkers = 64

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], then mutated by the bound flags before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Library root (from --path or the positional arg).
	Root string `yaml:"path"`

	// Behavior flags.
	Overwrite   bool    `yaml:"overwrite"`
	Repair      bool    `yaml:"repair"`
	SkipErrors  bool    `yaml:"skip_errors"`
	SeekSeconds float64 `yaml:"time"` // Default: 1.0.
	Verify      bool    `yaml:"verify"`

	// Execution.
	Workers     int           `yaml:"workers"` // Default: 1 (sequential).
	ToolTimeout time.Duration `yaml:"timeout"` // Default: 10m. Zero disables.
	FFmpegPath  string        `yaml:"ffmpeg"`  // Empty: resolved by check.ResolveTools.
	FFprobePath string        `yaml:"ffprobe"` // Empty: resolved by check.ResolveTools.

	// Display and logging.
	Verbose     bool      `yaml:"verbose"`
	ColorMode   ColorMode `yaml:"color"`
	LogFile     string    `yaml:"log"` // Empty disables the file sink.
	MetricsFile string    `yaml:"metrics_file"`
	CheckOnly   bool      `yaml:"-"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Root:        ".",
		SeekSeconds: 1.0,
		Verify:      true,
		Workers:     1,
		ToolTimeout: 10 * time.Minute,
		ColorMode:   ColorAuto,
		LogFile:     DefaultLogFile(),
	}
}

// LogFileName is the log written beside the executable unless --log says otherwise.
const LogFileName = "thumbnail_log.txt"

// DefaultLogFile returns LogFileName in the directory holding the running
// executable, or in the working directory when that cannot be determined.
func DefaultLogFile() string {
	exe, err := os.Executable()
	if err != nil {
		return LogFileName
	}
	return filepath.Join(filepath.Dir(exe), LogFileName)
}

// LoadFile overlays YAML settings from path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum and numeric fields. When not in CheckOnly mode it
// also requires a non-empty library root.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if math.IsNaN(c.SeekSeconds) || math.IsInf(c.SeekSeconds, 0) || c.SeekSeconds < 0 {
		return fmt.Errorf("screenshot time must be a non-negative number of seconds (got %v)", c.SeekSeconds)
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (got %d)", MaxWorkers, c.Workers)
	}
	if c.ToolTimeout < 0 {
		return errors.New("timeout must not be negative")
	}

	if c.CheckOnly {
		return nil
	}
	if c.Root == "" {
		return errors.New("need a directory to process")
	}
	return nil
}
