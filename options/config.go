package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DialectNameCommonMark = "commonmark"
	DialectNameGitHub     = "github"
)

// ParserConfig is the file form of ParserOptions.
type ParserConfig struct {
	Dialect string   `yaml:"dialect,omitempty"`
	Flags   []string `yaml:"flags,omitempty"`
	Mask    uint32   `yaml:"mask,omitempty"`
}

// RendererConfig is the file form of RendererOptions.
type RendererConfig struct {
	Flags []string `yaml:"flags,omitempty"`
	Mask  uint32   `yaml:"mask,omitempty"`
}

// Config is the md4go configuration file.
type Config struct {
	Parser            ParserConfig   `yaml:"parser"`
	Renderer          RendererConfig `yaml:"renderer"`
	MaxOutputSize     int            `yaml:"max_output_size,omitempty"`
	InitialBufferSize int            `yaml:"initial_buffer_size,omitempty"`
}

// Load reads a YAML configuration file. Environment variables in the file
// are expanded before decoding and unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML configuration from r.
func Decode(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	switch strings.ToLower(c.Parser.Dialect) {
	case "", DialectNameCommonMark, DialectNameGitHub:
	default:
		return fmt.Errorf("invalid parser dialect %q", c.Parser.Dialect)
	}

	for _, name := range c.Parser.Flags {
		if _, err := ParseParserFlag(name); err != nil {
			return err
		}
	}
	for _, name := range c.Renderer.Flags {
		if _, err := ParseRendererFlag(name); err != nil {
			return err
		}
	}

	if c.MaxOutputSize < 0 {
		return fmt.Errorf("max_output_size must not be negative, got %d", c.MaxOutputSize)
	}
	if c.InitialBufferSize < 0 {
		return fmt.Errorf("initial_buffer_size must not be negative, got %d", c.InitialBufferSize)
	}
	return nil
}

// ParserOptions converts the parser section into ParserOptions.
func (c Config) ParserOptions() (ParserOptions, error) {
	opts := ParserOptions{
		Flags:         ParserFlags(c.Parser.Mask),
		DialectGitHub: strings.EqualFold(c.Parser.Dialect, DialectNameGitHub),
	}
	for _, name := range c.Parser.Flags {
		f, err := ParseParserFlag(name)
		if err != nil {
			return ParserOptions{}, err
		}
		opts.Flags |= f
	}
	return opts, nil
}

// RendererOptions converts the renderer section into RendererOptions.
func (c Config) RendererOptions() (RendererOptions, error) {
	opts := RendererOptions{Flags: RendererFlags(c.Renderer.Mask)}
	for _, name := range c.Renderer.Flags {
		f, err := ParseRendererFlag(name)
		if err != nil {
			return RendererOptions{}, err
		}
		opts.Flags |= f
	}
	return opts, nil
}
