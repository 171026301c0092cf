// Package config loads codec settings from YAML.
//
//	codec:
//	  recurse: true
//	  wide_char_width: 16
//	log:
//	  level: info
//	  development: false
//	types:
//	  point: "struct IDL:Point:1.0 {x long y long}"
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/anycodec/errors"
	"github.com/wippyai/anycodec/typecode"
)

// Config is the complete configuration.
type Config struct {
	Codec Codec             `yaml:"codec"`
	Log   Log               `yaml:"log"`
	Types map[string]string `yaml:"types,omitempty"`
}

// Codec holds conversion settings.
type Codec struct {
	// Recurse selects full extraction; when false nested aggregates are
	// returned as tokens.
	Recurse bool `yaml:"recurse"`

	// WideCharWidth is the wide character width of the in-memory
	// provider in bits, 16 or 32.
	WideCharWidth int `yaml:"wide_char_width"`
}

// Log holds logger settings.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Codec: Codec{Recurse: true, WideCharWidth: 32},
		Log:   Log{Level: "info"},
	}
}

// Load reads and validates a configuration file. Settings missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config "+path)
	}
	return Parse(data)
}

// Parse decodes and validates configuration text. Unknown fields are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and parses every named descriptor.
func (c *Config) Validate() error {
	if w := c.Codec.WideCharWidth; w != 16 && w != 32 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("codec", "wide_char_width").
			Value(w).
			Detail("wide_char_width must be 16 or 32, got %d", w).
			Build()
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Value(c.Log.Level).
			Cause(err).
			Detail("unknown log level %q", c.Log.Level).
			Build()
	}
	for _, name := range c.TypeNames() {
		if _, err := typecode.ParseText(c.Types[name]); err != nil {
			return errors.At(errors.At(err, name), "types")
		}
	}
	return nil
}

// TypeNames returns the names of the configured descriptors, sorted.
func (c *Config) TypeNames() []string {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor parses the named descriptor.
func (c *Config) Descriptor(name string) (*typecode.TypeCode, error) {
	text, ok := c.Types[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseConfig, "type", name)
	}
	return typecode.ParseText(text)
}

// ZapConfig returns the logger configuration.
func (c *Config) ZapConfig() zap.Config {
	var zc zap.Config
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if level, err := zapcore.ParseLevel(c.Log.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc
}
