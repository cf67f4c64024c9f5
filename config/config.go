// Package config loads interpreter settings from TOML.
//
// An example document, showing the defaults:
//
//	trace = false
//	print_code = false
//	color = false
//	log_level = "info"
//	max_stack_depth = 256
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// DefaultMaxStackDepth matches the VM's default stack limit.
const DefaultMaxStackDepth = 256

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds interpreter settings. The zero value is not valid; start from
// Default.
type Config struct {
	// Trace enables instruction tracing during execution.
	Trace bool `toml:"trace"`

	// PrintCode prints a listing of each chunk before it runs.
	PrintCode bool `toml:"print_code"`

	// Color enables ANSI colors in listings and log output.
	Color bool `toml:"color"`

	// LogLevel is a zerolog level name such as "debug" or "info".
	LogLevel string `toml:"log_level"`

	// MaxStackDepth limits the VM value stack.
	MaxStackDepth int `toml:"max_stack_depth"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		MaxStackDepth: DefaultMaxStackDepth,
	}
}

// Parse decodes a TOML document on top of the defaults. Keys that are not
// part of Config are rejected.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Config{}, fmt.Errorf("%w: unknown key(s) %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if c.MaxStackDepth <= 0 {
		return fmt.Errorf("%w: max_stack_depth must be positive (got %d)", ErrInvalid, c.MaxStackDepth)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	return level, nil
}

// Logger returns a human-readable zerolog logger writing to w at the
// configured level.
func (c Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !c.Color}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
