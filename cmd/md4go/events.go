package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rgonek/md4go/parser"
	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// EventsCmd prints the events the parser reports for each input.
type EventsCmd struct {
	OptionFlags `embed:""`

	Files     []string `arg:"" optional:"" help:"Markdown files to parse (stdin when omitted)"`
	Format    string   `enum:"yaml,json" default:"yaml" help:"Output format (yaml, json)"`
	Bytes     bool     `help:"Parse through the byte input path"`
	StopAfter int      `name:"stop-after" help:"Stop parsing after this many events"`
}

func (c *EventsCmd) Run(root *CLI) error {
	cfg, err := resolveConfig(root.Config, c.OptionFlags)
	if err != nil {
		return err
	}
	p, err := newParser(cfg, slog.Default(), nil)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	docs := make([]documentRecord, 0, len(c.Files))
	for _, name := range inputNames(c.Files) {
		data, err := readInput(name, os.Stdin)
		if err != nil {
			return err
		}
		doc, err := collectEvents(p, data, c.Bytes, c.StopAfter)
		if err != nil {
			return fmt.Errorf("parse %s: %w", displayName(name), err)
		}
		doc.Source = displayName(name)
		docs = append(docs, doc)
	}
	return writeDocuments(os.Stdout, c.Format, docs)
}

type documentRecord struct {
	Source  string        `yaml:"source" json:"source"`
	Stopped bool          `yaml:"stopped,omitempty" json:"stopped,omitempty"`
	Events  []eventRecord `yaml:"events" json:"events"`
}

type eventRecord struct {
	Event  string         `yaml:"event" json:"event"`
	Type   string         `yaml:"type" json:"type"`
	Detail map[string]any `yaml:"detail,omitempty" json:"detail,omitempty"`
	Text   string         `yaml:"text,omitempty" json:"text,omitempty"`
}

type subRunRecord struct {
	Kind string `yaml:"kind" json:"kind"`
	Text string `yaml:"text" json:"text"`
}

// collectEvents parses data and records every event. A positive stopAfter
// cancels parsing once that many events were seen.
func collectEvents(p *parser.Parser, data []byte, useBytes bool, stopAfter int) (documentRecord, error) {
	c := &eventCollector{stopAfter: stopAfter}
	var err error
	if useBytes {
		err = p.ParseBytes(data, c)
	} else {
		err = p.ParseString(string(data), c)
	}
	if err != nil {
		return documentRecord{}, err
	}
	return documentRecord{Stopped: c.stopped, Events: c.events}, nil
}

// eventCollector is a parser.Handler that records events.
type eventCollector struct {
	events    []eventRecord
	stopAfter int
	stopped   bool
}

func (c *eventCollector) add(rec eventRecord) error {
	c.events = append(c.events, rec)
	if c.stopAfter > 0 && len(c.events) >= c.stopAfter {
		c.stopped = true
		return parser.ErrStopParsing
	}
	return nil
}

func (c *eventCollector) EnterBlock(typ parser.BlockType, detail parser.Detail) error {
	return c.add(eventRecord{Event: "enter_block", Type: typ.String(), Detail: detailFields(detail)})
}

func (c *eventCollector) LeaveBlock(typ parser.BlockType, detail parser.Detail) error {
	return c.add(eventRecord{Event: "leave_block", Type: typ.String(), Detail: detailFields(detail)})
}

func (c *eventCollector) EnterSpan(typ parser.SpanType, detail parser.Detail) error {
	return c.add(eventRecord{Event: "enter_span", Type: typ.String(), Detail: detailFields(detail)})
}

func (c *eventCollector) LeaveSpan(typ parser.SpanType, detail parser.Detail) error {
	return c.add(eventRecord{Event: "leave_span", Type: typ.String(), Detail: detailFields(detail)})
}

func (c *eventCollector) Text(typ parser.TextType, text parser.Text) error {
	return c.add(eventRecord{Event: "text", Type: typ.String(), Text: text.String()})
}

// detailFields converts a Detail into plain values: characters become
// one-character strings, enums their names and attributes lists of
// sub-runs. An absent attribute becomes nil.
func detailFields(detail parser.Detail) map[string]any {
	if detail == nil {
		return nil
	}
	fields := detail.Fields()
	if len(fields) == 0 {
		return nil
	}

	out := make(map[string]any, len(fields))
	for name, value := range fields {
		switch v := value.(type) {
		case rune:
			out[name] = string(v)
		case parser.Align:
			out[name] = v.String()
		case parser.AttributeRun:
			if v == nil {
				out[name] = nil
				continue
			}
			runs := make([]subRunRecord, len(v))
			for i, r := range v {
				runs[i] = subRunRecord{Kind: r.Kind.String(), Text: r.Text.String()}
			}
			out[name] = runs
		default:
			out[name] = v
		}
	}
	return out
}

func writeDocuments(w io.Writer, format string, docs []documentRecord) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "", formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("failed to encode events: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (allowed: yaml, json)", format)
	}
}
