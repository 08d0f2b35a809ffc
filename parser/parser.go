// Package parser runs the Markdown engine and forwards its events to a
// caller supplied Handler with structured per-element details.
package parser

import (
	"errors"
	"log/slog"
	"time"

	"github.com/rgonek/md4go/internal/engine"
	"github.com/rgonek/md4go/metrics"
	"github.com/rgonek/md4go/options"
)

// parseFunc is the engine entry point, replaced in tests.
var parseFunc = engine.Parse

// errAborted tells the engine to stop after a handler outcome was recorded.
var errAborted = errors.New("aborted by handler")

// Config configures a Parser.
type Config struct {
	Options  options.ParserOptions
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

func (c Config) applyDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Recorder == nil {
		c.Recorder = metrics.NoopRecorder{}
	}
	return c
}

// Parser parses Markdown and reports it to a Handler. A Parser holds only
// its options and may be used from several goroutines at once.
type Parser struct {
	flags    engine.Flag
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New creates a Parser with the given config.
func New(config Config) *Parser {
	cfg := config.applyDefaults()
	return &Parser{
		flags:    cfg.Options.Engine(),
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
}

// Flags returns the parser option mask in use.
func (p *Parser) Flags() options.ParserFlags {
	return options.ParserFlags(p.flags)
}

// ParseString parses input and reports it to h with string-backed Text.
func (p *Parser) ParseString(input string, h Handler) error {
	return p.parse([]byte(input), false, h)
}

// ParseBytes parses input and reports it to h with byte-backed Text.
func (p *Parser) ParseBytes(input []byte, h Handler) error {
	return p.parse(input, true, h)
}

func (p *Parser) parse(input []byte, isBytes bool, h Handler) error {
	if h == nil {
		p.recorder.IncDocument(metrics.PathParse, metrics.OutcomeRejected)
		return ErrNilHandler
	}

	start := time.Now()
	ctx := newCallbackContext(h, isBytes)
	engineErr := parseFunc(input, &engine.Parser{
		Flags:      p.flags,
		EnterBlock: ctx.enterBlock,
		LeaveBlock: ctx.leaveBlock,
		EnterSpan:  ctx.enterSpan,
		LeaveSpan:  ctx.leaveSpan,
		Text:       ctx.text,
	})
	outcome, err := ctx.result(engineErr)

	p.recorder.ObserveDuration(metrics.PathParse, time.Since(start))
	p.recorder.IncDocument(metrics.PathParse, outcome)
	for i, n := range ctx.counts {
		p.recorder.AddEvents(eventKindNames[i], n)
	}

	switch outcome {
	case metrics.OutcomeStopped:
		p.logger.Debug("parse stopped by handler", "events", ctx.total())
	case metrics.OutcomeFailed:
		p.logger.Debug("parse failed", "error", err, "events", ctx.total(), "bytes", len(input))
	}
	return err
}

type eventKind int

const (
	eventEnterBlock eventKind = iota
	eventLeaveBlock
	eventEnterSpan
	eventLeaveSpan
	eventText
	eventKinds
)

var eventKindNames = [eventKinds]string{"enter_block", "leave_block", "enter_span", "leave_span", "text"}

// callbackContext is the per-call state shared by the engine callbacks.
type callbackContext struct {
	handler Handler
	newText textFunc
	// pending is the first handler error, stop or failure.
	pending error
	counts  [eventKinds]int
}

func newCallbackContext(h Handler, isBytes bool) *callbackContext {
	return &callbackContext{handler: h, newText: textConstructor(isBytes)}
}

// settle records a handler outcome. Any error aborts the engine.
func (c *callbackContext) settle(err error) error {
	if err == nil {
		return nil
	}
	c.pending = err
	return errAborted
}

func (c *callbackContext) enterBlock(typ engine.BlockType, raw any) error {
	c.counts[eventEnterBlock]++
	return c.settle(c.handler.EnterBlock(BlockType(typ), blockDetail(typ, raw, c.newText)))
}

func (c *callbackContext) leaveBlock(typ engine.BlockType, raw any) error {
	c.counts[eventLeaveBlock]++
	return c.settle(c.handler.LeaveBlock(BlockType(typ), blockDetail(typ, raw, c.newText)))
}

func (c *callbackContext) enterSpan(typ engine.SpanType, raw any) error {
	c.counts[eventEnterSpan]++
	return c.settle(c.handler.EnterSpan(SpanType(typ), spanDetail(typ, raw, c.newText)))
}

func (c *callbackContext) leaveSpan(typ engine.SpanType, raw any) error {
	c.counts[eventLeaveSpan]++
	return c.settle(c.handler.LeaveSpan(SpanType(typ), spanDetail(typ, raw, c.newText)))
}

func (c *callbackContext) text(typ engine.TextType, text []byte) error {
	c.counts[eventText]++
	return c.settle(c.handler.Text(TextType(typ), c.newText(text)))
}

func (c *callbackContext) total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// result decides the call's error. A handler outcome takes precedence over
// whatever the engine reported.
func (c *callbackContext) result(engineErr error) (metrics.Outcome, error) {
	if c.pending != nil {
		if errors.Is(c.pending, ErrStopParsing) {
			return metrics.OutcomeStopped, nil
		}
		return metrics.OutcomeFailed, c.pending
	}
	if engineErr != nil {
		return metrics.OutcomeFailed, &ParseError{Op: "parse", Err: engineErr}
	}
	return metrics.OutcomeSuccess, nil
}
