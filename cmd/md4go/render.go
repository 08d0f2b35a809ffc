package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rgonek/md4go/renderer"
)

// RenderCmd renders Markdown files to HTML.
type RenderCmd struct {
	OptionFlags `embed:""`

	Files     []string `arg:"" optional:"" help:"Markdown files to render (stdin when omitted)"`
	Output    string   `short:"o" help:"Write HTML to this file instead of stdout"`
	Bytes     bool     `help:"Render through the byte input path"`
	MaxOutput int      `name:"max-output" help:"Fail when the HTML would exceed this many bytes"`
	Watch     bool     `short:"w" help:"Render again whenever an input file changes"`
}

func (c *RenderCmd) Run(root *CLI) error {
	cfg, err := resolveConfig(root.Config, c.OptionFlags)
	if err != nil {
		return err
	}
	r, err := newRenderer(cfg, c.MaxOutput, slog.Default(), nil)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	if !c.Watch {
		return c.renderOnce(r, os.Stdin)
	}
	if len(c.Files) == 0 {
		return errors.New("--watch needs at least one input file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	slog.Info("Watching input files", "files", len(c.Files))
	return watchInputs(ctx, c.Files, watchDebounce, func() error {
		return c.renderOnce(r, os.Stdin)
	})
}

// renderOnce renders every input and writes the result to the configured
// output. A file output is replaced on each call.
func (c *RenderCmd) renderOnce(r *renderer.HTMLRenderer, stdin io.Reader) error {
	if c.Output == "" {
		return renderInputs(r, c.Files, c.Bytes, stdin, os.Stdout)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := renderInputs(r, c.Files, c.Bytes, stdin, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	slog.Debug("Wrote HTML", "output", c.Output)
	return nil
}

func renderInputs(r *renderer.HTMLRenderer, files []string, useBytes bool, stdin io.Reader, w io.Writer) error {
	for _, name := range inputNames(files) {
		data, err := readInput(name, stdin)
		if err != nil {
			return err
		}

		var html []byte
		if useBytes {
			html, err = r.RenderBytes(data)
		} else {
			var s string
			s, err = r.RenderString(string(data))
			html = []byte(s)
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", displayName(name), err)
		}

		if _, err := w.Write(html); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
