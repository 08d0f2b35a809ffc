package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rgonek/md4go/metrics"
	"github.com/rgonek/md4go/options"
	"github.com/rgonek/md4go/parser"
	"github.com/rgonek/md4go/renderer"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path"`
	EnvFile string           `name:"env-file" help:"Load environment variables from this file before reading the configuration"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" help:"Render Markdown to HTML"`
	Events EventsCmd `cmd:"" help:"Print the parser event stream"`
	Serve  ServeCmd  `cmd:"" help:"Serve rendering and parsing over HTTP"`
}

// AfterApply runs after flag parsing; sets up logging and the environment.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if c.EnvFile != "" {
		if err := godotenv.Load(c.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		slog.Debug("Loaded environment file", "path", c.EnvFile)
	}
	return nil
}

// OptionFlags are the parser and renderer options shared by subcommands.
// They are applied on top of the configuration file.
type OptionFlags struct {
	Dialect       string   `help:"Parser dialect: commonmark or github"`
	Flag          []string `short:"f" name:"flag" help:"Parser flag name, e.g. tables or no-html (repeatable)"`
	ParserFlags   uint32   `name:"parser-flags" help:"Raw parser flag mask"`
	RendererFlag  []string `name:"renderer-flag" help:"Renderer flag name, e.g. xhtml (repeatable)"`
	RendererFlags uint32   `name:"renderer-flags" help:"Raw renderer flag mask"`
}

// resolveConfig loads the configuration file, if any, and merges flags
// into it. Flag names are added to the file's names and raw masks are
// combined with OR.
func resolveConfig(path string, flags OptionFlags) (*options.Config, error) {
	cfg := &options.Config{}
	if path != "" {
		loaded, err := options.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Dialect != "" {
		cfg.Parser.Dialect = flags.Dialect
	}
	cfg.Parser.Flags = append(cfg.Parser.Flags, flags.Flag...)
	cfg.Parser.Mask |= flags.ParserFlags
	cfg.Renderer.Flags = append(cfg.Renderer.Flags, flags.RendererFlag...)
	cfg.Renderer.Mask |= flags.RendererFlags

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// newRenderer builds an HTMLRenderer from cfg. A positive maxOutput
// overrides the configured output limit.
func newRenderer(cfg *options.Config, maxOutput int, logger *slog.Logger, rec metrics.Recorder) (*renderer.HTMLRenderer, error) {
	popts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}
	ropts, err := cfg.RendererOptions()
	if err != nil {
		return nil, err
	}

	limit := cfg.MaxOutputSize
	if maxOutput > 0 {
		limit = maxOutput
	}
	return renderer.New(renderer.Config{
		Parser:            popts,
		Renderer:          ropts,
		InitialBufferSize: cfg.InitialBufferSize,
		MaxOutputSize:     limit,
		Logger:            logger,
		Recorder:          rec,
	})
}

func newParser(cfg *options.Config, logger *slog.Logger, rec metrics.Recorder) (*parser.Parser, error) {
	popts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}
	return parser.New(parser.Config{Options: popts, Logger: logger, Recorder: rec}), nil
}
