// Package renderer converts Markdown directly to HTML.
package renderer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rgonek/md4go/internal/engine"
	"github.com/rgonek/md4go/internal/mdhtml"
	"github.com/rgonek/md4go/metrics"
	"github.com/rgonek/md4go/options"
	"github.com/rgonek/md4go/parser"
)

// DefaultInitialBufferSize is the starting capacity of the output buffer.
const DefaultInitialBufferSize = 256

// ParseError reports that the Markdown engine failed during rendering.
type ParseError = parser.ParseError

// renderFunc is the HTML renderer entry point, replaced in tests.
var renderFunc = mdhtml.Render

// Config configures an HTMLRenderer.
type Config struct {
	Parser   options.ParserOptions
	Renderer options.RendererOptions

	// InitialBufferSize is the starting output capacity. Zero selects
	// DefaultInitialBufferSize.
	InitialBufferSize int
	// MaxOutputSize caps the output length in bytes. Zero means no limit.
	MaxOutputSize int

	Logger   *slog.Logger
	Recorder metrics.Recorder
}

func (c Config) applyDefaults() Config {
	if c.InitialBufferSize == 0 {
		c.InitialBufferSize = DefaultInitialBufferSize
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Recorder == nil {
		c.Recorder = metrics.NoopRecorder{}
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.InitialBufferSize < 0 {
		return fmt.Errorf("initialBufferSize must not be negative, got %d", c.InitialBufferSize)
	}
	if c.MaxOutputSize < 0 {
		return fmt.Errorf("maxOutputSize must not be negative, got %d", c.MaxOutputSize)
	}
	return nil
}

// HTMLRenderer renders Markdown to HTML. It holds only immutable settings
// and is safe for concurrent use.
type HTMLRenderer struct {
	parserFlags   engine.Flag
	rendererFlags mdhtml.Flag
	initialSize   int
	maxSize       int
	logger        *slog.Logger
	recorder      metrics.Recorder
}

// New creates an HTMLRenderer with the given config.
func New(config Config) (*HTMLRenderer, error) {
	cfg := config.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &HTMLRenderer{
		parserFlags:   cfg.Parser.Engine(),
		rendererFlags: cfg.Renderer.Engine(),
		initialSize:   cfg.InitialBufferSize,
		maxSize:       cfg.MaxOutputSize,
		logger:        cfg.Logger,
		recorder:      cfg.Recorder,
	}, nil
}

// ParserFlags returns the parser option mask in use.
func (r *HTMLRenderer) ParserFlags() options.ParserFlags {
	return options.ParserFlags(r.parserFlags)
}

// RendererFlags returns the renderer option mask in use.
func (r *HTMLRenderer) RendererFlags() options.RendererFlags {
	return options.RendererFlags(r.rendererFlags)
}

// RenderString renders input and returns the HTML as a string.
func (r *HTMLRenderer) RenderString(input string) (string, error) {
	out, err := r.render([]byte(input))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderBytes renders input and returns the HTML as bytes.
func (r *HTMLRenderer) RenderBytes(input []byte) ([]byte, error) {
	return r.render(input)
}

func (r *HTMLRenderer) render(input []byte) ([]byte, error) {
	start := time.Now()
	buf := newOutputBuffer(r.initialSize, r.maxSize)

	err := renderFunc(input, buf.append, mdhtml.Options{
		ParserFlags: r.parserFlags,
		Flags:       r.rendererFlags,
		DebugLog: func(msg string) {
			r.logger.Debug(msg, "component", "engine")
		},
	})
	r.recorder.ObserveDuration(metrics.PathRender, time.Since(start))
	if err != nil {
		r.recorder.IncDocument(metrics.PathRender, metrics.OutcomeFailed)
		r.logger.Debug("render failed", "error", err, "bytes", len(input))
		return nil, &ParseError{Op: "render", Err: err}
	}

	out := buf.bytes()
	r.recorder.IncDocument(metrics.PathRender, metrics.OutcomeSuccess)
	r.recorder.ObserveOutputBytes(len(out))
	return out, nil
}
